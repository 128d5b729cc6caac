package hooktemplate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderStopHook_ContainsMarkerAndShipID(t *testing.T) {
	script := RenderStopHook("ship-2", "/voyage/workspace", "/voyage/artifacts/progress.txt")

	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
	assert.Contains(t, script, hookMarker)
	assert.Contains(t, script, "Ship: ship-2")
	assert.Contains(t, script, "/voyage/workspace")
	assert.Contains(t, script, "progress.txt")
}

func TestRenderStopHook_NeverTouchesTaskFiles(t *testing.T) {
	script := RenderStopHook("ship-0", "/voyage/workspace", "/voyage/artifacts/progress.txt")
	assert.NotContains(t, script, "tasks/")
	assert.NotContains(t, script, ".json")
}

func TestIsVoyagerHook(t *testing.T) {
	assert.True(t, IsVoyagerHook(RenderStopHook("ship-0", "/w", "/p")))
	assert.False(t, IsVoyagerHook("#!/bin/sh\necho hi\n"))
	assert.False(t, IsVoyagerHook(""))
}
