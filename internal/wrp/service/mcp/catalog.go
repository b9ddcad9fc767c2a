package mcp

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/pkg/utils/json"
	"github.com/mark3labs/mcp-go/mcp"
)

// Catalog is the set of tools a server advertised at connect time. It is
// built once and read-only afterwards.
type Catalog struct {
	server string
	tools  []*entity.ToolDefinition
	index  map[string]int
}

// NewCatalog validates the advertised tools and converts them to tool
// definitions, preserving server order.
func NewCatalog(server string, tools []mcp.Tool) (*Catalog, error) {
	c := &Catalog{
		server: server,
		tools:  make([]*entity.ToolDefinition, 0, len(tools)),
		index:  make(map[string]int, len(tools)),
	}

	for i, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tool #%d has no name", ErrMalformedCatalog, i)
		}
		if _, dup := c.index[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate tool %q", ErrMalformedCatalog, t.Name)
		}
		schema, err := inputSchemaOf(t)
		if err != nil {
			return nil, fmt.Errorf("%w: tool %q: %v", ErrMalformedCatalog, t.Name, err)
		}

		c.index[t.Name] = len(c.tools)
		c.tools = append(c.tools, &entity.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return c, nil
}

// inputSchemaOf accepts any schema object the server sent, including an
// empty one. Only an absent or null schema is rejected. A schema without a
// type is treated as an object schema.
func inputSchemaOf(t mcp.Tool) (map[string]any, error) {
	var raw []byte
	switch {
	case len(t.RawInputSchema) > 0 && string(t.RawInputSchema) != "null":
		raw = t.RawInputSchema
	case t.InputSchema.Type != "" || t.InputSchema.Properties != nil || t.InputSchema.Required != nil:
		b, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		return nil, fmt.Errorf("missing input schema")
	}

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	if schema == nil {
		return nil, fmt.Errorf("missing input schema")
	}
	if typ, _ := schema["type"].(string); typ == "" {
		schema["type"] = "object"
	}
	return schema, nil
}

// Server returns the name of the server the catalog came from.
func (c *Catalog) Server() string {
	return c.server
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tools)
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[name]
	return ok
}

// Names returns tool names in server order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}

// Get returns a copy of the named tool definition.
func (c *Catalog) Get(name string) (*entity.ToolDefinition, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return cloneDefinition(c.tools[i]), true
}

// Tools returns deep copies of every definition, in server order.
func (c *Catalog) Tools() []*entity.ToolDefinition {
	if c == nil {
		return nil
	}
	out := make([]*entity.ToolDefinition, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, cloneDefinition(t))
	}
	return out
}

func cloneDefinition(def *entity.ToolDefinition) *entity.ToolDefinition {
	out := &entity.ToolDefinition{}
	if err := copier.CopyWithOption(out, def, copier.Option{DeepCopy: true}); err != nil {
		cp := *def
		return &cp
	}
	return out
}
