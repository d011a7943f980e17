package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/easyapply/internal/form"
)

// Functions evaluated with the question block as this.
const (
	jsLabel = `function() {
		const l = this.querySelector('label') || this.querySelector('legend');
		return l ? l.innerText.trim() : '';
	}`
	jsCapabilities = `function() {
		return {
			hasRadio: this.querySelector("input[type='radio']") !== null,
			hasSelect: this.querySelector('select') !== null,
		};
	}`
	jsRadioOptions = `function() {
		return Array.from(this.querySelectorAll("input[type='radio']")).map(r => {
			const l = document.querySelector("label[for='" + r.id + "']");
			return l ? l.innerText.trim() : '';
		});
	}`
	jsSelectOptions = `function() {
		const s = this.querySelector('select');
		return s ? Array.from(s.options).map(o => o.text.trim()) : [];
	}`
	jsChooseRadio = `function(i) {
		const r = this.querySelectorAll("input[type='radio']")[i];
		if (!r) return false;
		r.click();
		return true;
	}`
	jsChooseSelect = `function(i) {
		const s = this.querySelector('select');
		if (!s || i >= s.options.length) return false;
		s.selectedIndex = i;
		s.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`
	jsClearText = `function() {
		const el = this.querySelector('input, textarea');
		if (!el) return false;
		el.focus();
		el.value = '';
		el.dispatchEvent(new Event('input', { bubbles: true }));
		return true;
	}`
)

// field is a question block addressed by its DOM node.
type field struct {
	s    *Session
	node *cdp.Node
}

func (f *field) call(ctx context.Context, fn string, res any, args ...any) error {
	return f.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(f.node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve field node: %w", err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}, args...).Do(ctx)
	}))
}

func (f *field) Label(ctx context.Context) (string, error) {
	var label string
	if err := f.call(ctx, jsLabel, &label); err != nil {
		return "", err
	}
	return label, nil
}

func (f *field) Capabilities(ctx context.Context) (form.Capabilities, error) {
	var caps struct {
		HasRadio  bool `json:"hasRadio"`
		HasSelect bool `json:"hasSelect"`
	}
	if err := f.call(ctx, jsCapabilities, &caps); err != nil {
		return form.Capabilities{}, err
	}
	return form.Capabilities{HasRadio: caps.HasRadio, HasSelect: caps.HasSelect}, nil
}

func (f *field) Options(ctx context.Context, kind form.Kind) ([]string, error) {
	fn := jsRadioOptions
	if kind == form.KindDropdown {
		fn = jsSelectOptions
	}
	var opts []string
	if err := f.call(ctx, fn, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (f *field) Choose(ctx context.Context, kind form.Kind, index int) error {
	fn := jsChooseRadio
	if kind == form.KindDropdown {
		fn = jsChooseSelect
	}
	var ok bool
	if err := f.call(ctx, fn, &ok, index); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s option %d not found", kind, index)
	}
	return nil
}

// SetText clears the input and types value with real key events.
func (f *field) SetText(ctx context.Context, value string) error {
	var ok bool
	if err := f.call(ctx, jsClearText, &ok); err != nil {
		return err
	}
	if !ok {
		return errors.New("text input not found")
	}
	return f.s.run(ctx, chromedp.SendKeys("input, textarea", value, chromedp.ByQuery, chromedp.FromNode(f.node)))
}
