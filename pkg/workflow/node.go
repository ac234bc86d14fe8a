package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NodeType is the n8n type tag of a node.
type NodeType string

const (
	NodeTypeFormTrigger NodeType = "n8n-nodes-base.formTrigger"
	NodeTypeFunction    NodeType = "n8n-nodes-base.function"
	NodeTypeHTTPRequest NodeType = "n8n-nodes-base.httpRequest"
)

var ErrUnknownNodeType = errors.New("unknown node type")

// Parameters is the closed set of node parameter shapes. Only the types in
// this package implement it, and each one fixes the node's type tag and
// type version.
type Parameters interface {
	NodeType() NodeType
	TypeVersion() float64
	isParameters()
}

// Position is the cosmetic canvas position of a node.
type Position [2]int

// Node is one typed unit of the workflow graph. Name is the key used by
// connections and must be unique within a document.
type Node struct {
	ID         string
	Name       string
	Position   Position
	Parameters Parameters
	Disabled   bool
	WebhookID  string
}

// Type returns the node's type tag, derived from its parameters.
func (n Node) Type() NodeType {
	if n.Parameters == nil {
		return ""
	}

	return n.Parameters.NodeType()
}

type nodeJSON struct {
	Parameters  json.RawMessage `json:"parameters"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        NodeType        `json:"type"`
	TypeVersion float64         `json:"typeVersion"`
	Position    Position        `json:"position"`
	Disabled    bool            `json:"disabled,omitempty"`
	WebhookID   string          `json:"webhookId,omitempty"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	if n.Parameters == nil {
		return nil, fmt.Errorf("node %q: %w", n.Name, ErrUnknownNodeType)
	}

	params, err := json.Marshal(n.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters of node %q: %w", n.Name, err)
	}

	return json.Marshal(nodeJSON{
		Parameters:  params,
		ID:          n.ID,
		Name:        n.Name,
		Type:        n.Parameters.NodeType(),
		TypeVersion: n.Parameters.TypeVersion(),
		Position:    n.Position,
		Disabled:    n.Disabled,
		WebhookID:   n.WebhookID,
	})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var params Parameters

	switch raw.Type {
	case NodeTypeFormTrigger:
		params = &FormTriggerParameters{}
	case NodeTypeFunction:
		params = &FunctionParameters{}
	case NodeTypeHTTPRequest:
		params = &HTTPRequestParameters{}
	default:
		return fmt.Errorf("node %q has type %q: %w", raw.Name, raw.Type, ErrUnknownNodeType)
	}

	if err := json.Unmarshal(raw.Parameters, params); err != nil {
		return fmt.Errorf("failed to decode parameters of node %q: %w", raw.Name, err)
	}

	*n = Node{
		ID:         raw.ID,
		Name:       raw.Name,
		Position:   raw.Position,
		Parameters: params,
		Disabled:   raw.Disabled,
		WebhookID:  raw.WebhookID,
	}

	return nil
}

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeBoolean  FieldType = "boolean"
)

// FormTriggerParameters configures the intake form node.
type FormTriggerParameters struct {
	FormTitle       string      `json:"formTitle"`
	FormDescription string      `json:"formDescription"`
	ResponseMode    string      `json:"responseMode"`
	Fields          []FormField `json:"fields"`
	Options         FormOptions `json:"options"`
}

// FormField is one intake form input. Required and Placeholder are
// pointers so that an unset key is left out while false and "" are kept.
type FormField struct {
	FieldLabel        string             `json:"fieldLabel"`
	FieldName         string             `json:"fieldName"`
	FieldType         FieldType          `json:"fieldType"`
	Required          *bool              `json:"required,omitempty"`
	Placeholder       *string            `json:"placeholder,omitempty"`
	OptionsCollection *OptionsCollection `json:"optionsCollection,omitempty"`
	Default           any                `json:"default,omitempty"`
}

type OptionsCollection struct {
	Options []SelectOption `json:"options"`
}

type SelectOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FormOptions holds the externally visible trigger path of the form.
type FormOptions struct {
	WebhookPath string `json:"webhookPath"`
	ButtonLabel string `json:"buttonLabel"`
}

func (*FormTriggerParameters) NodeType() NodeType   { return NodeTypeFormTrigger }
func (*FormTriggerParameters) TypeVersion() float64 { return 2.4 }
func (*FormTriggerParameters) isParameters()        {}

// FunctionParameters configures a scripted transform node.
type FunctionParameters struct {
	FunctionCode string `json:"functionCode"`
}

func (*FunctionParameters) NodeType() NodeType   { return NodeTypeFunction }
func (*FunctionParameters) TypeVersion() float64 { return 2 }
func (*FunctionParameters) isParameters()        {}

// HTTPRequestParameters configures an outbound HTTP call node.
type HTTPRequestParameters struct {
	Method             string             `json:"method"`
	URL                string             `json:"url"`
	SendBody           bool               `json:"sendBody"`
	JSONParameters     bool               `json:"jsonParameters"`
	BodyParametersJSON string             `json:"bodyParametersJson"`
	Options            HTTPRequestOptions `json:"options"`
}

// HTTPRequestOptions carries the request timeout in milliseconds.
type HTTPRequestOptions struct {
	Timeout int `json:"timeout"`
}

func (*HTTPRequestParameters) NodeType() NodeType   { return NodeTypeHTTPRequest }
func (*HTTPRequestParameters) TypeVersion() float64 { return 4.2 }
func (*HTTPRequestParameters) isParameters()        {}
