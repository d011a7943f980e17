package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/easyapply/internal/form"
	"github.com/jonathan/easyapply/internal/wizard"
)

// groupingSelector matches one question block of a wizard step.
const groupingSelector = `.jobs-easy-apply-form-section__grouping`

func locate(c wizard.Control) (wizard.Locator, error) {
	l, ok := wizard.Locators[c]
	if !ok {
		return wizard.Locator{}, fmt.Errorf("unknown control %q", c)
	}
	return l, nil
}

func by(l wizard.Locator, all bool) chromedp.QueryOption {
	switch {
	case l.XPath:
		return chromedp.BySearch
	case all:
		return chromedp.ByQueryAll
	default:
		return chromedp.ByQuery
	}
}

// Present reports whether any element matches the control, without waiting.
func (s *Session) Present(ctx context.Context, c wizard.Control) (bool, error) {
	l, err := locate(c)
	if err != nil {
		return false, err
	}
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(l.Query, &nodes, by(l, true), chromedp.AtLeast(0))); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", c, err)
	}
	return len(nodes) > 0, nil
}

// Click waits for the first element matching the control to be visible and clicks it.
func (s *Session) Click(ctx context.Context, c wizard.Control) error {
	l, err := locate(c)
	if err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.Click(l.Query, by(l, false), chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("failed to click %s: %w", c, err)
	}
	return nil
}

// Upload attaches path to the file input matching the control.
func (s *Session) Upload(ctx context.Context, c wizard.Control, path string) error {
	l, err := locate(c)
	if err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.SetUploadFiles(l.Query, []string{path}, by(l, false), chromedp.NodeReady)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	s.logger.Info("uploaded document", "control", string(c), "path", path)
	return nil
}

// EasyApplyButton reports whether the job page shows an "Easy Apply" button.
func (s *Session) EasyApplyButton(ctx context.Context) (bool, error) {
	return s.Present(ctx, wizard.ControlEasyApply)
}

// Fields returns one handle per question block of the current step, in page order.
func (s *Session) Fields(ctx context.Context) ([]form.Field, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(groupingSelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("failed to list form fields: %w", err)
	}
	fields := make([]form.Field, len(nodes))
	for i, n := range nodes {
		fields[i] = &field{s: s, node: n}
	}
	return fields, nil
}
