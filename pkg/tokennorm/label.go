package tokennorm

// Label identifies one of the nine per-process text sources the feature
// extractor tokenizes. Each label has its own delimiter set and its own
// stopword set loaded from the ignore-token manifest.
type Label string

const (
	LabelAttr    Label = "attr"
	LabelCgroup  Label = "cgroup"
	LabelCmdline Label = "cmdline"
	LabelComm    Label = "comm"
	LabelMaps    Label = "maps"
	LabelFDs     Label = "fds"
	LabelEnviron Label = "environ"
	LabelExe     Label = "exe"
	LabelLogs    Label = "logs"
)

// Labels enumerates every recognized ignore-map key, in the order the
// ignore-token manifest documents them (spec.md §6).
var Labels = []Label{
	LabelAttr, LabelCgroup, LabelCmdline, LabelComm,
	LabelEnviron, LabelExe, LabelLogs, LabelFDs, LabelMaps,
}

func (l Label) String() string { return string(l) }

// manifestAliases maps ignore-token manifest key spellings (spec.md §6) to
// the Label used as the RawFeatureMap/text_cols key. Only "maps" differs:
// the manifest and the original proc-reading code call the source
// "map_files" after the /proc/<pid>/map_files directory it comes from, but
// the model's text_cols/RawFeatureMap key is the shorter "maps" (spec.md
// §3). The two namespaces are distinct on purpose; this is the only seam
// between them.
var manifestAliases = map[string]Label{
	"map_files": LabelMaps,
}

// ParseManifestLabel resolves one ignore-token manifest key to its Label,
// honoring the "map_files" alias for LabelMaps (spec.md §6).
func ParseManifestLabel(key string) Label {
	if l, ok := manifestAliases[key]; ok {
		return l
	}
	return Label(key)
}
