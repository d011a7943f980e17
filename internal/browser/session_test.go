package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easyapply/internal/jobs"
	"github.com/jonathan/easyapply/internal/wizard"
)

var (
	_ jobs.Browser = (*Session)(nil)
	_ wizard.Page  = (*Session)(nil)
)

func TestFlags(t *testing.T) {
	flags := Flags(Options{Headless: false})
	assert.Equal(t, false, flags["headless"])
	assert.Equal(t, true, flags["no-sandbox"])
	assert.Equal(t, true, flags["start-maximized"])
	assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])
	assert.NotContains(t, flags, "disable-gpu")

	headless := Flags(Options{Headless: true})
	assert.Equal(t, true, headless["headless"])
	assert.Equal(t, true, headless["disable-gpu"])
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "https://www.linkedin.com/login/", LoginURL("https://www.linkedin.com/"))
	assert.Equal(t, "https://www.linkedin.com/login/", LoginURL("https://www.linkedin.com"))
}

func TestScrollSteps(t *testing.T) {
	assert.Equal(t, []int{0, 500, 1000, 1500, 2000, 2500, 3000, 3500}, ScrollSteps(0, 4000, 500))
	steps := ScrollSteps(300, 3000, 100)
	require.Len(t, steps, 27)
	assert.Equal(t, 300, steps[0])
	assert.Equal(t, 2900, steps[len(steps)-1])
	assert.Equal(t, "[1,2,3]", jsArray([]int{1, 2, 3}))
}

func TestLocate(t *testing.T) {
	for c := range wizard.Locators {
		_, err := locate(c)
		assert.NoError(t, err, c)
	}
	_, err := locate(wizard.Control("missing"))
	assert.Error(t, err)
}
