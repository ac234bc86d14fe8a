package workflow

// PortMain is the only connection type the documents use.
const PortMain = "main"

// Edge points at an input of a target node.
type Edge struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Connections lists the output ports of one source node. Parallel fan-out
// is several edges in the same port, not several ports.
type Connections struct {
	Main [][]Edge `json:"main"`
}

// ConnectionMap is keyed by source node name.
type ConnectionMap map[string]Connections

func (m ConnectionMap) connect(source string, targets ...string) {
	port := make([]Edge, 0, len(targets))
	for _, target := range targets {
		port = append(port, Edge{Node: target, Type: PortMain, Index: 0})
	}

	m[source] = Connections{Main: [][]Edge{port}}
}

// Targets returns the names of all nodes reachable in one step from source.
func (m ConnectionMap) Targets(source string) []string {
	var targets []string

	for _, port := range m[source].Main {
		for _, edge := range port {
			targets = append(targets, edge.Node)
		}
	}

	return targets
}

type Settings struct {
	Timezone string `json:"timezone"`
}

type Tag struct {
	Name string `json:"name"`
}

// Document is an n8n workflow import document.
type Document struct {
	ID          *string        `json:"id"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []Node         `json:"nodes"`
	Connections ConnectionMap  `json:"connections"`
	VersionID   string         `json:"versionId"`
	Settings    Settings       `json:"settings"`
	StaticData  map[string]any `json:"staticData,omitempty"`
	Tags        []Tag          `json:"tags"`
}

// Metadata accompanies a built document.
type Metadata struct {
	CreatedAt    string `json:"createdAt"`
	DownloadName string `json:"downloadName"`
}

// BuildResult is the output of a build.
type BuildResult struct {
	Workflow Document `json:"workflow"`
	Metadata Metadata `json:"metadata"`
}
