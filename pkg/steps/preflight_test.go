package steps

import (
	"errors"
	"strings"
	"testing"
)

func swapRequiredTools(t *testing.T, tools []string) {
	t.Helper()
	saved := requiredTools
	requiredTools = tools
	t.Cleanup(func() { requiredTools = saved })
}

func TestPreflight_AllToolsPresent(t *testing.T) {
	swapRequiredTools(t, []string{"sh"})
	ctx := newTestContext(t, false)

	status, err := preflightStep{}.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != statusOK {
		t.Errorf("unexpected status %q", status)
	}
}

func TestPreflight_ListsAllMissingTools(t *testing.T) {
	swapRequiredTools(t, []string{"sh", "no-such-tool-one", "no-such-tool-two"})
	ctx := newTestContext(t, false)

	_, err := preflightStep{}.Run(ctx)
	if err == nil {
		t.Fatal("expected error for missing tools")
	}
	if !errors.Is(err, ErrToolMissing) {
		t.Errorf("expected ErrToolMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "no-such-tool-one") || !strings.Contains(err.Error(), "no-such-tool-two") {
		t.Errorf("error should list every missing tool: %v", err)
	}
}
