// pkg/plugins/plugins_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test every bundled plug-in type is registered

package plugins_test

import (
	"testing"

	"github.com/arthur-debert/imgrename/pkg/plugin"
	_ "github.com/arthur-debert/imgrename/pkg/plugins"
	"github.com/stretchr/testify/assert"
)

func TestRegistered(t *testing.T) {
	assert.Equal(t, []string{"http-resource", "trait-registry"}, plugin.ValidatorTypes())
	assert.Equal(t, []string{"companion", "rename-log", "sequence", "sidecar", "trait-registry", "trigger"}, plugin.ListenerTypes())
}
