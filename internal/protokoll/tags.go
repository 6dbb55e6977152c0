package protokoll

import (
	"fmt"
	"sort"
	"strconv"
	"text/template"
)

// Feature is a committee setting that gates a group of tags.
type Feature int

const (
	// FeatureAlways marks tags that are rewritten regardless of committee settings.
	FeatureAlways Feature = iota
	FeatureMotion
	FeaturePointOfOrder
)

// Features holds the committee settings relevant for tag rewriting.
type Features struct {
	Motion       bool
	PointOfOrder bool
}

func (f Features) Enabled(feature Feature) bool {
	switch feature {
	case FeatureMotion:
		return f.Motion
	case FeaturePointOfOrder:
		return f.PointOfOrder
	}
	return true
}

// TagForm describes how a bracket tag is rewritten into a template action.
type TagForm int

const (
	// InlineTag is replaced by the handler's result.
	InlineTag TagForm = iota
	// BlockStart opens a block and binds the handler's result to the block variable.
	BlockStart
	// BlockEnd emits the block variable's outcome and closes the block.
	BlockEnd
	// Placeholder is replaced by a field of the render context.
	Placeholder
)

// RenderContext carries the per-render values tag handlers and placeholders may read.
type RenderContext struct {
	Sitzungsleitung string
	Protokollant    string
	Sitzung         string
	Attachments     []AttachmentLink
}

// TagHandler resolves one tag invocation.
type TagHandler func(rc *RenderContext, name string, args []string) (any, error)

// Tag is one entry of the TagRegistry.
type Tag struct {
	Name    string
	Form    TagForm
	Feature Feature
	// Block is the template variable shared by a start tag and its end tags.
	Block   string
	Field   string
	Handler TagHandler
}

// TagRegistry maps tag names to their definitions. It is built once at
// startup and handed to the Assembler.
type TagRegistry struct {
	tags map[string]Tag
}

// NewTagRegistry returns a registry with the motion, point of order,
// attachment and context placeholder tags.
func NewTagRegistry() *TagRegistry {
	r := &TagRegistry{tags: map[string]Tag{}}

	for _, name := range []string{"antrag", "motion"} {
		r.mustRegister(Tag{Name: name, Form: BlockStart, Feature: FeatureMotion, Block: "motion", Handler: voteHandler(Motion)})
		r.mustRegister(Tag{Name: "end" + name, Form: BlockEnd, Feature: FeatureMotion, Block: "motion"})
	}
	for _, name := range []string{"goantrag", "point_of_order"} {
		r.mustRegister(Tag{Name: name, Form: BlockStart, Feature: FeaturePointOfOrder, Block: "pointOfOrder", Handler: voteHandler(PointOfOrder)})
		r.mustRegister(Tag{Name: "end" + name, Form: BlockEnd, Feature: FeaturePointOfOrder, Block: "pointOfOrder"})
	}
	for _, name := range []string{"anhang", "attachment"} {
		r.mustRegister(Tag{Name: name, Form: InlineTag, Feature: FeatureAlways, Handler: attachmentHandler})
	}
	r.mustRegister(Tag{Name: "sitzungsleitung", Form: Placeholder, Field: "Sitzungsleitung"})
	r.mustRegister(Tag{Name: "protokollant", Form: Placeholder, Field: "Protokollant"})
	r.mustRegister(Tag{Name: "sitzung", Form: Placeholder, Field: "Sitzung"})

	return r
}

// Register adds a tag. Names must be unique.
func (r *TagRegistry) Register(t Tag) error {
	if len(t.Name) == 0 {
		return fmt.Errorf("tag without name")
	}
	if _, ok := r.tags[t.Name]; ok {
		return fmt.Errorf("tag %q already registered", t.Name)
	}
	switch t.Form {
	case InlineTag, BlockStart:
		if t.Handler == nil {
			return fmt.Errorf("tag %q needs a handler", t.Name)
		}
	case Placeholder:
		if len(t.Field) == 0 {
			return fmt.Errorf("placeholder %q needs a field", t.Name)
		}
	}
	r.tags[t.Name] = t
	return nil
}

func (r *TagRegistry) mustRegister(t Tag) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

func (r *TagRegistry) Lookup(name string) (Tag, bool) {
	t, ok := r.tags[name]
	return t, ok
}

// Names returns the registered tag names in lexical order.
func (r *TagRegistry) Names() []string {
	names := make([]string, 0, len(r.tags))
	for name := range r.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuncMap binds the handlers of all callable tags to rc.
func (r *TagRegistry) FuncMap(rc *RenderContext) template.FuncMap {
	funcs := template.FuncMap{}
	for name, t := range r.tags {
		if t.Handler == nil {
			continue
		}
		name, handler := name, t.Handler
		funcs[name] = func(args ...string) (any, error) {
			return handler(rc, name, args)
		}
	}
	return funcs
}

func voteHandler(kind VoteKind) TagHandler {
	return func(_ *RenderContext, name string, args []string) (any, error) {
		v, err := ParseVote(name, args)
		if err != nil {
			return nil, err
		}
		return VoteBlock{Vote: v, Kind: kind}, nil
	}
}

func attachmentHandler(rc *RenderContext, name string, args []string) (any, error) {
	if len(args) != 1 {
		return nil, tagErrorf(name, "expects exactly one attachment number")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, tagErrorf(name, "attachment number must be an integer, got %q", args[0])
	}
	link, err := ResolveAttachment(rc.Attachments, index)
	if err != nil {
		return nil, &TagError{Tag: name, Msg: err.Error()}
	}
	return link, nil
}
