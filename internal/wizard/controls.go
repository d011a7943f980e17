// Package wizard walks the multi-step Easy Apply dialog until the application is
// submitted or abandoned.
package wizard

import (
	"context"

	"github.com/jonathan/easyapply/internal/form"
)

// Control identifies an element of the apply dialog.
type Control string

// Controls the walker observes and acts on.
const (
	ControlNext              Control = "next"
	ControlReview            Control = "review"
	ControlSubmit            Control = "submit"
	ControlError             Control = "error"
	ControlResumeMarker      Control = "resume_marker"
	ControlResumeInput       Control = "resume_input"
	ControlCoverLetterMarker Control = "cover_letter_marker"
	ControlCoverLetterInput  Control = "cover_letter_input"
	ControlFollow            Control = "follow"
	ControlEasyApply         Control = "easy_apply"
)

// Locator is a CSS selector or an XPath expression.
type Locator struct {
	Query string
	XPath bool
}

// Locators maps every control to the markup convention of the target site.
var Locators = map[Control]Locator{
	ControlNext:              {Query: `button[aria-label='Continue to next step']`},
	ControlReview:            {Query: `button[aria-label='Review your application']`},
	ControlSubmit:            {Query: `button[aria-label='Submit application']`},
	ControlError:             {Query: `.artdeco-inline-feedback__message`},
	ControlResumeMarker:      {Query: `//span[text()="Upload resume"]`, XPath: true},
	ControlResumeInput:       {Query: `[id*='jobs-document-upload-file-input-upload-resume']`},
	ControlCoverLetterMarker: {Query: `//span[text()="Upload cover letter"]`, XPath: true},
	ControlCoverLetterInput:  {Query: `[id*='jobs-document-upload-file-input-upload-cover-letter']`},
	ControlFollow:            {Query: `label[for='follow-company-checkbox']`},
	ControlEasyApply:         {Query: `//button[contains(@class, "jobs-apply-button") and contains(., "Easy Apply")]`, XPath: true},
}

// SuccessText appears in the page source once an application has been sent.
const SuccessText = "application was sent"

// Page is the browser surface the walker drives.
type Page interface {
	// Present reports whether at least one element matches the control
	Present(ctx context.Context, c Control) (bool, error)
	// Click clicks the first element matching the control once it is clickable
	Click(ctx context.Context, c Control) error
	// Upload attaches a local file to the file input matching the control
	Upload(ctx context.Context, c Control, path string) error
	// PageSource returns the rendered document HTML
	PageSource(ctx context.Context) (string, error)
	// Fields returns the form groupings of the current step
	Fields(ctx context.Context) ([]form.Field, error)
}

// FieldProcessor answers and fills a step's fields.
type FieldProcessor interface {
	ProcessFields(ctx context.Context, fields []form.Field) (int, error)
}
