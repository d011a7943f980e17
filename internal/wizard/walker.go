package wizard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Action is the primary move a cycle makes, chosen in fixed priority.
type Action int

const (
	// ActionStall means no recognised control is visible
	ActionStall Action = iota
	// ActionSubmit clicks submit and ends the walk
	ActionSubmit
	// ActionFixErrors answers the questions behind validation errors
	ActionFixErrors
	// ActionNext advances to the next step
	ActionNext
	// ActionReview opens the review step
	ActionReview
	// ActionFollow toggles the follow-company checkbox
	ActionFollow
)

func (a Action) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionFixErrors:
		return "fix_errors"
	case ActionNext:
		return "next"
	case ActionReview:
		return "review"
	case ActionFollow:
		return "follow"
	default:
		return "stall"
	}
}

// Observation is the set of controls visible at the start of a cycle.
type Observation struct {
	ResumeUpload      bool
	CoverLetterUpload bool
	Submit            bool
	Error             bool
	Next              bool
	Review            bool
	Follow            bool
}

// Decide returns the primary action for an observation.
func Decide(o Observation) Action {
	switch {
	case o.Submit:
		return ActionSubmit
	case o.Error:
		return ActionFixErrors
	case o.Next:
		return ActionNext
	case o.Review:
		return ActionReview
	case o.Follow:
		return ActionFollow
	default:
		return ActionStall
	}
}

// Reason explains how a walk ended.
type Reason string

// Walk outcomes
const (
	ReasonSubmitted   Reason = "submitted"
	ReasonAbandoned   Reason = "abandoned"
	ReasonStalled     Reason = "stalled"
	ReasonStepLimit   Reason = "step_limit"
	ReasonInterrupted Reason = "interrupted"
)

// Outcome is the terminal result of one walk.
type Outcome struct {
	Submitted bool
	Reason    Reason
	Cycles    int
}

// WalkError aborts a walk; the attempt counts as failed.
type WalkError struct {
	Step string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("wizard step %s failed: %v", e.Step, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options configures a Walker.
type Options struct {
	ResumePath      string
	CoverLetterPath string
	// MaxStalls is the number of consecutive cycles without a recognised control
	// after which the walk fails
	MaxStalls int
	// MaxCycles bounds the total number of cycles of one walk
	MaxCycles    int
	SettleDelay  time.Duration
	ErrorRecheck time.Duration
	Sleep        SleepFunc
	Logger       *slog.Logger
}

// DefaultOptions returns the walker timing used against the live site.
func DefaultOptions() Options {
	return Options{
		MaxStalls:    2,
		MaxCycles:    50,
		SettleDelay:  time.Second,
		ErrorRecheck: 5 * time.Second,
		Sleep:        Sleep,
	}
}

// Walker drives one application dialog.
type Walker struct {
	page      Page
	processor FieldProcessor
	opts      Options
	logger    *slog.Logger
}

// New creates a Walker. Zero bounds and a nil Sleep take their defaults; zero delays
// are kept.
func New(page Page, processor FieldProcessor, opts Options) *Walker {
	def := DefaultOptions()
	if opts.MaxStalls <= 0 {
		opts.MaxStalls = def.MaxStalls
	}
	if opts.MaxCycles <= 0 {
		opts.MaxCycles = def.MaxCycles
	}
	if opts.Sleep == nil {
		opts.Sleep = def.Sleep
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Walker{page: page, processor: processor, opts: opts, logger: logger}
}

// Walk runs the dialog state machine. A returned error is always a *WalkError.
func (w *Walker) Walk(ctx context.Context) (Outcome, error) {
	out := Outcome{}
	stalls := 0

	for out.Cycles < w.opts.MaxCycles {
		out.Cycles++
		if err := w.opts.Sleep(ctx, w.opts.SettleDelay); err != nil {
			return w.interrupted(out, "settle", err)
		}

		obs, err := w.observe(ctx)
		if err != nil {
			return out, &WalkError{Step: "observe", Err: err}
		}

		followed, err := w.sideActions(ctx, obs)
		if err != nil {
			return out, err
		}

		action := Decide(obs)
		if action == ActionFollow && followed {
			action = ActionStall
		}
		w.logger.Debug("wizard cycle", "cycle", out.Cycles, "action", action.String())

		switch action {
		case ActionSubmit:
			if err := w.page.Click(ctx, ControlSubmit); err != nil {
				return out, &WalkError{Step: "submit", Err: err}
			}
			w.logger.Info("application submitted")
			out.Submitted, out.Reason = true, ReasonSubmitted
			return out, nil

		case ActionFixErrors:
			done, reason, err := w.fixErrors(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return w.interrupted(out, "fix_errors", err)
				}
				return out, &WalkError{Step: "fix_errors", Err: err}
			}
			if done {
				out.Submitted, out.Reason = reason == ReasonSubmitted, reason
				return out, nil
			}
			stalls = 0

		case ActionNext, ActionReview, ActionFollow:
			if err := w.page.Click(ctx, actionControl[action]); err != nil {
				return out, &WalkError{Step: action.String(), Err: err}
			}
			stalls = 0

		default:
			if followed {
				stalls = 0
				continue
			}
			stalls++
			w.logger.Debug("no wizard control recognised", "stalls", stalls)
			if stalls >= w.opts.MaxStalls {
				w.logger.Info("application not submitted, wizard stalled")
				out.Reason = ReasonStalled
				return out, nil
			}
		}
	}

	out.Reason = ReasonStepLimit
	return out, nil
}

var actionControl = map[Action]Control{
	ActionNext:   ControlNext,
	ActionReview: ControlReview,
	ActionFollow: ControlFollow,
}

func (w *Walker) interrupted(out Outcome, step string, err error) (Outcome, error) {
	out.Reason = ReasonInterrupted
	return out, &WalkError{Step: step, Err: err}
}

func (w *Walker) observe(ctx context.Context) (Observation, error) {
	var obs Observation
	checks := []struct {
		c   Control
		dst *bool
	}{
		{ControlResumeMarker, &obs.ResumeUpload},
		{ControlCoverLetterMarker, &obs.CoverLetterUpload},
		{ControlSubmit, &obs.Submit},
		{ControlError, &obs.Error},
		{ControlNext, &obs.Next},
		{ControlReview, &obs.Review},
		{ControlFollow, &obs.Follow},
	}
	for _, check := range checks {
		ok, err := w.page.Present(ctx, check.c)
		if err != nil {
			return obs, fmt.Errorf("failed to check %s: %w", check.c, err)
		}
		*check.dst = ok
	}
	return obs, nil
}

// sideActions attaches documents and, when no cover letter is requested, toggles the
// follow checkbox. Upload failures are logged and never abort the attempt.
func (w *Walker) sideActions(ctx context.Context, obs Observation) (bool, error) {
	if obs.ResumeUpload && w.opts.ResumePath != "" {
		if err := w.page.Upload(ctx, ControlResumeInput, w.opts.ResumePath); err != nil {
			w.logger.Error("resume upload failed", "resume", w.opts.ResumePath, "error", err)
		}
	}

	if obs.CoverLetterUpload && w.opts.CoverLetterPath != "" {
		if err := w.page.Upload(ctx, ControlCoverLetterInput, w.opts.CoverLetterPath); err != nil {
			w.logger.Error("cover letter upload failed", "cover_letter", w.opts.CoverLetterPath, "error", err)
		}
		return false, nil
	}

	if obs.Follow {
		if err := w.page.Click(ctx, ControlFollow); err != nil {
			return false, &WalkError{Step: "follow", Err: err}
		}
		return true, nil
	}
	return false, nil
}

// fixErrors repeatedly answers the current step's questions until the errors clear
// (done=false), the application is sent or the dialog closes (done=true).
func (w *Walker) fixErrors(ctx context.Context) (bool, Reason, error) {
	sent, err := w.sent(ctx)
	if err != nil {
		return false, "", err
	}
	if sent {
		w.logger.Info("application submitted")
		return true, ReasonSubmitted, nil
	}

	for {
		w.logger.Info("please answer the questions, waiting", "interval", w.opts.ErrorRecheck)
		if err := w.opts.Sleep(ctx, w.opts.ErrorRecheck); err != nil {
			return false, "", err
		}

		fields, err := w.page.Fields(ctx)
		if err != nil {
			return false, "", fmt.Errorf("failed to list fields: %w", err)
		}
		if _, err := w.processor.ProcessFields(ctx, fields); err != nil {
			return false, "", err
		}

		if sent, err := w.sent(ctx); err != nil {
			return false, "", err
		} else if sent {
			w.logger.Info("application submitted")
			return true, ReasonSubmitted, nil
		}

		reopened, err := w.page.Present(ctx, ControlEasyApply)
		if err != nil {
			return false, "", fmt.Errorf("failed to check %s: %w", ControlEasyApply, err)
		}
		if reopened {
			w.logger.Info("skipping application, dialog closed")
			return true, ReasonAbandoned, nil
		}

		errs, err := w.page.Present(ctx, ControlError)
		if err != nil {
			return false, "", fmt.Errorf("failed to check %s: %w", ControlError, err)
		}
		if !errs {
			return false, "", nil
		}
	}
}

func (w *Walker) sent(ctx context.Context) (bool, error) {
	src, err := w.page.PageSource(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read page source: %w", err)
	}
	return strings.Contains(src, SuccessText), nil
}
