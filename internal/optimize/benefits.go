package optimize

import "github.com/Dicklesworthstone/sysoptimizer/internal/model"

var benefits = map[model.OperationKind][]string{
	model.OpTempPurge: {
		"Frees disk space",
		"Potential performance gain from fewer unnecessary files",
		"Removes temporary data that could affect privacy",
		"Reduces disk fragmentation",
		"Improves disk read/write speed",
	},
	model.OpTrim: {
		"Improves SSD read/write speed",
		"Reclaims unused blocks",
		"Better overall disk performance",
		"Longer SSD lifespan",
		"Faster random access",
	},
	model.OpDefragment: {
		"Significantly faster reads",
		"Shorter file access times",
		"Better overall system performance",
		"Less CPU and memory spent on disk access",
		"Longer hard disk life from less head movement",
	},
}

// Benefits returns the display statements attached to a successful
// report of kind. The slice is a copy.
func Benefits(kind model.OperationKind) []string {
	b := benefits[kind]
	out := make([]string, len(b))
	copy(out, b)
	return out
}
