package workflow_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/dukex/flywheel/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceIDs struct {
	prefix string
	next   int
}

func (s *sequenceIDs) NewID() string {
	s.next++

	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}

func defaultOptions() workflow.Options {
	return workflow.Options{
		WorkflowName:          "Twitter AI Flywheel",
		FormPath:              "twitter-flywheel",
		OpenAICredentialName:  "OpenAI Account",
		TwitterCredentialName: "Twitter OAuth",
		Tone:                  "professional",
		IncludeImage:          true,
		IncludeEngagement:     true,
		IncludeDM:             true,
		EngagementHashtags:    []string{"#AI", "#Automation"},
		DMHandles:             []string{"@founder"},
	}
}

func TestBuild_Topology(t *testing.T) {
	result := workflow.Build(defaultOptions())
	doc := result.Workflow

	require.Len(t, doc.Nodes, 9)
	require.NoError(t, doc.Validate())

	assert.Equal(t, []string{workflow.NameBriefForm}, doc.Sources())
	assert.Equal(t, []string{
		workflow.NameDMOutreach,
		workflow.NameEngagement,
		workflow.NamePublish,
	}, doc.Sinks())

	assert.Equal(t, []string{workflow.NameNormalise}, doc.Connections.Targets(workflow.NameBriefForm))
	assert.Equal(t, []string{workflow.NameGenerate}, doc.Connections.Targets(workflow.NameNormalise))
	assert.Equal(t, []string{workflow.NamePreparePayloads}, doc.Connections.Targets(workflow.NameGenerate))
	assert.Equal(t, []string{
		workflow.NamePublish,
		workflow.NameHydrateEngagement,
		workflow.NamePrepareDM,
	}, doc.Connections.Targets(workflow.NamePreparePayloads))
	assert.Equal(t, []string{workflow.NameEngagement}, doc.Connections.Targets(workflow.NameHydrateEngagement))
	assert.Equal(t, []string{workflow.NameDMOutreach}, doc.Connections.Targets(workflow.NamePrepareDM))

	// fan-out lives in a single port
	require.Len(t, doc.Connections[workflow.NamePreparePayloads].Main, 1)

	for source := range doc.Connections {
		for _, port := range doc.Connections[source].Main {
			for _, edge := range port {
				assert.Equal(t, workflow.PortMain, edge.Type)
				assert.Equal(t, 0, edge.Index)

				_, ok := doc.NodeByName(edge.Node)
				assert.True(t, ok, "edge target %s", edge.Node)
			}
		}
	}

	order, err := doc.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, workflow.NameBriefForm, order[0])
}

func TestBuild_DocumentEnvelope(t *testing.T) {
	created := time.Date(2025, 3, 4, 5, 6, 7, 89_000_000, time.FixedZone("BRT", -3*60*60))
	builder := workflow.NewBuilder(
		workflow.WithIDSource(&sequenceIDs{prefix: "id"}),
		workflow.WithClock(func() time.Time { return created }),
	)

	result := builder.Build(defaultOptions())

	assert.Nil(t, result.Workflow.ID)
	assert.Equal(t, "Twitter AI Flywheel", result.Workflow.Name)
	assert.False(t, result.Workflow.Active)
	assert.Equal(t, "UTC", result.Workflow.Settings.Timezone)
	assert.Equal(t, []workflow.Tag{{Name: "twitter"}, {Name: "ai"}}, result.Workflow.Tags)
	assert.NotEmpty(t, result.Workflow.VersionID)
	assert.Equal(t, "2025-03-04T08:06:07.089Z", result.Metadata.CreatedAt)
	assert.Equal(t, "twitter-ai-flywheel-workflow.json", result.Metadata.DownloadName)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	wf := raw["workflow"]
	assert.Contains(t, wf, "id")
	assert.Nil(t, wf["id"])
	assert.NotContains(t, wf, "staticData")
	assert.Equal(t, false, wf["active"])
	assert.Equal(t, "2025-03-04T08:06:07.089Z", raw["metadata"]["createdAt"])
}

func TestBuild_DisabledBranches(t *testing.T) {
	tests := []struct {
		name       string
		engagement bool
		dm         bool
	}{
		{name: "all branches", engagement: true, dm: true},
		{name: "no engagement", engagement: false, dm: true},
		{name: "no dm", engagement: true, dm: false},
		{name: "publish only", engagement: false, dm: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			opts.IncludeEngagement = tt.engagement
			opts.IncludeDM = tt.dm

			doc := workflow.Build(opts).Workflow
			require.Len(t, doc.Nodes, 9)

			disabled := map[string]bool{}
			for _, node := range doc.Nodes {
				disabled[node.Name] = node.Disabled
			}

			assert.False(t, disabled[workflow.NamePublish])
			assert.False(t, disabled[workflow.NameBriefForm])
			assert.False(t, disabled[workflow.NameGenerate])
			assert.Equal(t, !tt.engagement, disabled[workflow.NameHydrateEngagement])
			assert.Equal(t, !tt.engagement, disabled[workflow.NameEngagement])
			assert.Equal(t, !tt.dm, disabled[workflow.NamePrepareDM])
			assert.Equal(t, !tt.dm, disabled[workflow.NameDMOutreach])
		})
	}
}

func TestBuild_IntakeNode(t *testing.T) {
	opts := defaultOptions()
	opts.WorkflowName = "Launch   Week\tCampaign"
	opts.Tone = "witty"
	opts.IncludeImage = false

	doc := workflow.Build(opts).Workflow

	node, ok := doc.NodeByName(workflow.NameBriefForm)
	require.True(t, ok)
	assert.Equal(t, workflow.NodeTypeFormTrigger, node.Type())
	assert.NotEmpty(t, node.WebhookID)
	assert.Equal(t, workflow.Position{240, 320}, node.Position)

	params, ok := node.Parameters.(*workflow.FormTriggerParameters)
	require.True(t, ok)
	assert.Equal(t, "twitter-flywheel", params.Options.WebhookPath)
	assert.Equal(t, "Generate & Launch", params.Options.ButtonLabel)
	assert.Equal(t, "Launch Week Campaign Brief", params.FormTitle)
	assert.Equal(t, "onSubmit", params.ResponseMode)

	fields := map[string]workflow.FormField{}
	for _, field := range params.Fields {
		fields[field.FieldName] = field
	}

	require.Len(t, fields, 8)
	require.NotNil(t, fields["topic"].Required)
	assert.True(t, *fields["topic"].Required)
	assert.True(t, *fields["niche"].Required)
	assert.False(t, *fields["callToAction"].Required)
	assert.Nil(t, fields["generateImage"].Required)
	assert.Equal(t, "witty", fields["tone"].Default)
	require.NotNil(t, fields["tone"].OptionsCollection)
	assert.Len(t, fields["tone"].OptionsCollection.Options, len(workflow.Tones))
	assert.Equal(t, false, fields["generateImage"].Default)
	assert.Equal(t, "#AI, #Automation", *fields["engagementFilters"].Placeholder)
	assert.Equal(t, "@founder", *fields["dmTargets"].Placeholder)
}

func TestBuild_IntakeFieldKeys(t *testing.T) {
	opts := defaultOptions()
	opts.DMHandles = nil

	doc := workflow.Build(opts).Workflow
	node, ok := doc.NodeByName(workflow.NameBriefForm)
	require.True(t, ok)

	encoded, err := json.Marshal(node.Parameters)
	require.NoError(t, err)

	var params struct {
		Fields []map[string]json.RawMessage `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(encoded, &params))
	require.Len(t, params.Fields, 8)

	byName := map[string]map[string]json.RawMessage{}
	for _, field := range params.Fields {
		var name string
		require.NoError(t, json.Unmarshal(field["fieldName"], &name))
		byName[name] = field
	}

	assert.NotContains(t, byName["generateImage"], "required")
	assert.NotContains(t, byName["generateImage"], "placeholder")
	assert.JSONEq(t, "false", string(byName["tone"]["required"]))
	assert.JSONEq(t, "false", string(byName["callToAction"]["required"]))
	assert.JSONEq(t, "true", string(byName["topic"]["required"]))
	assert.JSONEq(t, `""`, string(byName["dmTargets"]["placeholder"]))
}

func TestBuild_HTTPNodes(t *testing.T) {
	builder := workflow.NewBuilder(workflow.WithBaseURL("http://localhost:9091/"))
	doc := builder.Build(defaultOptions()).Workflow

	expected := map[string]string{
		workflow.NameGenerate:   "http://localhost:9091/api/generate",
		workflow.NamePublish:    "http://localhost:9091/api/twitter/publish",
		workflow.NameEngagement: "http://localhost:9091/api/twitter/engage",
		workflow.NameDMOutreach: "http://localhost:9091/api/twitter/dm",
	}

	for name, url := range expected {
		node, ok := doc.NodeByName(name)
		require.True(t, ok, name)

		params, ok := node.Parameters.(*workflow.HTTPRequestParameters)
		require.True(t, ok, name)
		assert.Equal(t, "POST", params.Method)
		assert.Equal(t, url, params.URL)
		assert.True(t, params.SendBody)
		assert.True(t, params.JSONParameters)
		assert.Equal(t, 60000, params.Options.Timeout)
		assert.Equal(t, 4.2, node.Parameters.TypeVersion())
	}

	publish, _ := doc.NodeByName(workflow.NamePublish)
	assert.Equal(t, "={{ JSON.stringify($json.publishBody) }}",
		publish.Parameters.(*workflow.HTTPRequestParameters).BodyParametersJSON)
}

func TestBuild_DefaultBaseURL(t *testing.T) {
	doc := workflow.Build(defaultOptions()).Workflow

	node, ok := doc.NodeByName(workflow.NameGenerate)
	require.True(t, ok)
	assert.Equal(t, workflow.DefaultBaseURL+"/api/generate", node.Parameters.(*workflow.HTTPRequestParameters).URL)
}

func TestBuild_FreshIdentifiers(t *testing.T) {
	opts := defaultOptions()

	first := workflow.Build(opts).Workflow
	second := workflow.Build(opts).Workflow

	assert.NotEqual(t, first.VersionID, second.VersionID)
	assert.Equal(t, first.Connections, second.Connections)

	seen := map[string]bool{}

	for i := range first.Nodes {
		a, b := first.Nodes[i], second.Nodes[i]

		assert.NotEqual(t, a.ID, b.ID)
		assert.False(t, seen[a.ID])
		seen[a.ID] = true

		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Position, b.Position)
		assert.Equal(t, a.Parameters, b.Parameters)
		assert.Equal(t, a.Disabled, b.Disabled)
	}
}

func TestBuild_CredentialNamesNotEmitted(t *testing.T) {
	opts := defaultOptions()
	opts.OpenAICredentialName = "very-secret-openai-credential"
	opts.TwitterCredentialName = "very-secret-twitter-credential"

	data, err := json.Marshal(workflow.Build(opts))
	require.NoError(t, err)

	assert.NotContains(t, string(data), opts.OpenAICredentialName)
	assert.NotContains(t, string(data), opts.TwitterCredentialName)
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := workflow.Build(defaultOptions()).Workflow

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded workflow.Document
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, doc, decoded)
}

func TestNode_UnmarshalUnknownType(t *testing.T) {
	var node workflow.Node

	err := json.Unmarshal([]byte(`{"id":"1","name":"x","type":"n8n-nodes-base.set","parameters":{}}`), &node)
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrUnknownNodeType)
}

func TestDocument_ValidateRejectsBrokenGraphs(t *testing.T) {
	t.Run("dangling edge", func(t *testing.T) {
		doc := workflow.Build(defaultOptions()).Workflow
		doc.Connections[workflow.NamePublish] = workflow.Connections{
			Main: [][]workflow.Edge{{{Node: "Nowhere", Type: workflow.PortMain}}},
		}

		assert.ErrorIs(t, doc.Validate(), workflow.ErrDanglingEdge)
	})

	t.Run("cycle", func(t *testing.T) {
		doc := workflow.Build(defaultOptions()).Workflow
		doc.Connections[workflow.NamePublish] = workflow.Connections{
			Main: [][]workflow.Edge{{{Node: workflow.NameNormalise, Type: workflow.PortMain}}},
		}

		assert.ErrorIs(t, doc.Validate(), workflow.ErrCycle)
	})

	t.Run("duplicate name", func(t *testing.T) {
		doc := workflow.Build(defaultOptions()).Workflow
		doc.Nodes[1].Name = doc.Nodes[0].Name

		assert.ErrorIs(t, doc.Validate(), workflow.ErrDuplicateNodeName)
	})
}

func TestDownloadName(t *testing.T) {
	tests := map[string]string{
		"Twitter AI Flywheel":   "twitter-ai-flywheel-workflow.json",
		"Launch -- Week!! 2025": "launch-week-2025-workflow.json",
		"already-kebab":         "already-kebab-workflow.json",
		"  padded  ":            "-padded--workflow.json",
		"Ünïcode Näme":          "-n-code-n-me-workflow.json",
	}

	for name, expected := range tests {
		assert.Equal(t, expected, workflow.DownloadName(name), name)
	}
}
