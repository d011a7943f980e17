package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/easyapply/internal/ledger"
	"github.com/jonathan/easyapply/internal/types"
	"github.com/jonathan/easyapply/internal/wizard"
)

// AlreadyAppliedText is shown on a job page instead of the apply button after applying.
const AlreadyAppliedText = "You applied on"

// PhoneFieldLabel labels the contact number input on the first wizard step.
const PhoneFieldLabel = "Mobile phone number"

// Browser is the surface the iterator needs beyond the wizard page.
type Browser interface {
	wizard.Page
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	// ScrollPage scrolls the window down in steps and back to the top so lazy content renders
	ScrollPage(ctx context.Context) error
	// ScrollResults scrolls the search results list so every card renders
	ScrollResults(ctx context.Context) error
	// EasyApplyButton reports whether an apply button reading "Easy Apply" is shown
	EasyApplyButton(ctx context.Context) (bool, error)
}

// Walker walks one apply dialog.
type Walker interface {
	Walk(ctx context.Context) (wizard.Outcome, error)
}

// Disposition explains how an attempt ended.
type Disposition string

// Attempt dispositions
const (
	DispositionSubmitted      Disposition = "applied"
	DispositionNotSubmitted   Disposition = "not submitted"
	DispositionBlacklisted    Disposition = "blacklisted title"
	DispositionAlreadyApplied Disposition = "already applied"
	DispositionNoButton       Disposition = "no easy apply button"
	DispositionError          Disposition = "error"
)

// Attempt is the result of one ApplyToJob call.
type Attempt struct {
	Record      types.AppliedJobRecord
	Disposition Disposition
	Outcome     wizard.Outcome
	Err         error
}

// ApplyToJob opens the job page and applies through the dialog when possible. Exactly
// one ledger row is written, the candidate's status is updated and the job joins the
// recent set whatever the outcome.
func (it *Iterator) ApplyToJob(ctx context.Context, cand *types.JobCandidate) Attempt {
	logger := it.logger.With("job_id", cand.JobID)
	att := it.attempt(ctx, cand.JobID)
	att.Record.Timestamp = it.now()

	if att.Err != nil {
		logger.Error("apply attempt failed", "error", att.Err)
	}
	logger.Info("position processed",
		"title", att.Record.JobTitle,
		"company", att.Record.Company,
		"disposition", string(att.Disposition),
	)

	if err := it.ledger.Append(ctx, att.Record); err != nil {
		logger.Error("failed to record apply attempt", "error", err)
	}

	if att.Record.Result {
		cand.Status = types.StatusApplied
		it.stats.Applied++
	} else {
		cand.Status = types.StatusFailed
		it.stats.Failed++
	}
	if att.Record.Attempted {
		it.stats.Attempted++
	}
	it.recent[cand.JobID] = struct{}{}
	return att
}

func (it *Iterator) attempt(ctx context.Context, jobID string) Attempt {
	att := Attempt{Record: types.AppliedJobRecord{JobID: jobID}}

	if err := it.browser.Navigate(ctx, JobURL(it.opts.BaseURL, jobID)); err != nil {
		return it.failed(att, fmt.Errorf("failed to open job page: %w", err))
	}
	if err := it.sleep(ctx, it.opts.SettleDelay); err != nil {
		return it.failed(att, err)
	}
	if err := it.browser.ScrollPage(ctx); err != nil {
		it.logger.Debug("job page scroll failed", "job_id", jobID, "error", err)
	}

	found, err := it.browser.EasyApplyButton(ctx)
	if err != nil {
		return it.failed(att, fmt.Errorf("failed to look for the easy apply button: %w", err))
	}
	att.Record.Attempted = found

	title, err := it.browser.Title(ctx)
	if err != nil {
		return it.failed(att, fmt.Errorf("failed to read job page title: %w", err))
	}
	att.Record.JobTitle, att.Record.Company = ledger.ParseTitle(title)

	if !found {
		src, err := it.browser.PageSource(ctx)
		if err != nil {
			return it.failed(att, fmt.Errorf("failed to read job page: %w", err))
		}
		if strings.Contains(src, AlreadyAppliedText) {
			att.Disposition = DispositionAlreadyApplied
		} else {
			att.Disposition = DispositionNoButton
		}
		return att
	}

	if containsAny(title, it.opts.BlacklistTitles) {
		att.Disposition = DispositionBlacklisted
		return att
	}

	it.logger.Info("clicking the easy apply button", "job_id", jobID)
	if err := it.browser.Click(ctx, wizard.ControlEasyApply); err != nil {
		return it.failed(att, fmt.Errorf("failed to open the apply dialog: %w", err))
	}
	if err := it.sleep(ctx, it.opts.SettleDelay); err != nil {
		return it.failed(att, err)
	}
	if err := it.fillPhone(ctx); err != nil {
		it.logger.Warn("failed to fill phone number", "job_id", jobID, "error", err)
	}

	walkCtx := ctx
	if it.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		walkCtx, cancel = context.WithTimeout(ctx, it.opts.AttemptTimeout)
		defer cancel()
	}
	out, err := it.walker.Walk(walkCtx)
	att.Outcome = out
	if err != nil {
		return it.failed(att, err)
	}
	att.Record.Result = out.Submitted
	if out.Submitted {
		att.Disposition = DispositionSubmitted
	} else {
		att.Disposition = DispositionNotSubmitted
	}
	return att
}

func (it *Iterator) failed(att Attempt, err error) Attempt {
	att.Record.Result = false
	att.Disposition = DispositionError
	att.Err = err
	return att
}

// fillPhone types the configured number into the phone input of the first step.
func (it *Iterator) fillPhone(ctx context.Context) error {
	if it.opts.PhoneNumber == "" {
		return nil
	}
	fields, err := it.browser.Fields(ctx)
	if err != nil {
		return err
	}
	for _, f := range fields {
		label, err := f.Label(ctx)
		if err != nil || !strings.Contains(label, PhoneFieldLabel) {
			continue
		}
		return f.SetText(ctx, it.opts.PhoneNumber)
	}
	return nil
}
