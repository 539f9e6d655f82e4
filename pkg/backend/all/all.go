// Package all registers every backend shipped with treegen. Import it for
// its side effects.
package all

import (
	_ "github.com/arthur-debert/treegen/pkg/backend/buildgraph"
	_ "github.com/arthur-debert/treegen/pkg/backend/recursivemake"
	_ "github.com/arthur-debert/treegen/pkg/backend/visualstudio"
)
