// Package plugins links every bundled validator and listener into the
// binary. Importing it registers their factories with package plugin.
package plugins

import (
	// Import all plug-in packages to register their factories
	_ "github.com/arthur-debert/imgrename/pkg/plugins/companion"
	_ "github.com/arthur-debert/imgrename/pkg/plugins/httpresource"
	_ "github.com/arthur-debert/imgrename/pkg/plugins/renamelog"
	_ "github.com/arthur-debert/imgrename/pkg/plugins/sequence"
	_ "github.com/arthur-debert/imgrename/pkg/plugins/sidecar"
	_ "github.com/arthur-debert/imgrename/pkg/plugins/traitregistry"
	_ "github.com/arthur-debert/imgrename/pkg/plugins/trigger"
)
