package steps

import (
	"os"
	"testing"
)

// Every step invoked with dry-run enabled must succeed without mutating the
// build root or starting any subprocess.
func TestAllSteps_DryRunSucceedsWithoutSideEffects(t *testing.T) {
	swapRequiredTools(t, []string{"sh"})

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			ctx := newTestContext(t, true)

			step, err := New(name)
			if err != nil {
				t.Fatal(err)
			}

			status, err := step.Run(ctx)
			if err != nil {
				t.Fatalf("dry-run of %s failed: %v", name, err)
			}
			if status != statusOK && status != statusSimulated {
				t.Errorf("unexpected status %q", status)
			}

			entries, err := os.ReadDir(ctx.Config.BuildRoot)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("dry-run of %s created entries under the build root: %v", name, entries)
			}
		})
	}
}
