package js

import (
	"log/slog"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/minidom/dom"
)

// Globals published by Install.
const (
	DocumentGlobal  = "document"
	DOMParserGlobal = "DOMParser"
	NodeGlobal      = "Node"
)

// htmlMIMEType is the only type DOMParser.parseFromString feeds to a
// document.
const htmlMIMEType = "text/html"

// Registry is the installation context for one runtime. It publishes the
// document, DOMParser and Node globals, and offers the same factories to Go
// callers. A Registry is not safe for concurrent use.
//
// A Registry and its binder are meant to live for one page: the binder keeps
// a wrapper for every node it has exposed until ClearCache is called.
type Registry struct {
	runtime   *Runtime
	binder    *DOMBinder
	logger    *slog.Logger
	installed bool

	// created holds the elements made through the factories, for the
	// global document's getElementById.
	created []*dom.Node
}

// NewRegistry creates a registry for runtime. Nothing is published until
// Install is called.
func NewRegistry(runtime *Runtime) *Registry {
	return &Registry{
		runtime: runtime,
		binder:  NewDOMBinder(runtime),
		logger:  runtime.Logger(),
	}
}

// Runtime returns the runtime the registry installs into.
func (r *Registry) Runtime() *Runtime {
	return r.runtime
}

// Binder returns the binder used for every node the registry exposes.
func (r *Registry) Binder() *DOMBinder {
	return r.binder
}

// Install publishes document, DOMParser and Node on the global object.
// Globals that already exist are left alone, and calls after the first are
// no-ops.
func (r *Registry) Install() {
	if r.installed {
		return
	}
	vm := r.runtime.vm

	globals := []struct {
		name  string
		build func() *goja.Object
	}{
		{DocumentGlobal, r.newGlobalDocument},
		{DOMParserGlobal, r.newDOMParserConstructor},
		{NodeGlobal, r.newNodeConstants},
	}
	for _, g := range globals {
		if defined(vm.Get(g.name)) {
			r.logger.Debug("global already defined, skipping", "name", g.name)
			continue
		}
		vm.Set(g.name, g.build())
		r.logger.Debug("installed global", "name", g.name)
	}
	r.installed = true
}

// IsReady reports whether Install has run and all three globals are
// defined.
func (r *Registry) IsReady() bool {
	if !r.installed {
		return false
	}
	vm := r.runtime.vm
	return defined(vm.Get(DocumentGlobal)) &&
		defined(vm.Get(DOMParserGlobal)) &&
		defined(vm.Get(NodeGlobal))
}

func defined(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v)
}

// CreateElement creates a detached element that the global document's
// getElementById can find until it is attached to a parsed document.
func (r *Registry) CreateElement(tagName string) *dom.Node {
	r.pruneCreated()
	el := dom.NewElement(tagName)
	r.created = append(r.created, el)
	return el
}

// pruneCreated forgets factory-created elements that have joined a parsed
// document.
func (r *Registry) pruneCreated() {
	kept := r.created[:0]
	for _, el := range r.created {
		if !el.Root().IsParserRoot() {
			kept = append(kept, el)
		}
	}
	clear(r.created[len(kept):])
	r.created = kept
}

// CreateTextNode creates a detached text node.
func (r *Registry) CreateTextNode(data string) *dom.Node {
	return dom.NewText(data)
}

// CreateDocument creates a closed, empty document with the given title.
func (r *Registry) CreateDocument(title string) *dom.Document {
	return dom.NewDocument(title)
}

// ParseFromString builds a document from source. Only "text/html" is fed
// through Open, Write and Close; any other type yields an empty document.
func (r *Registry) ParseFromString(source, mimeType string) *dom.Document {
	doc := dom.NewDocument("")
	if mimeType != htmlMIMEType {
		r.logger.Debug("unsupported mime type, returning empty document", "mime", mimeType)
		return doc
	}
	doc.Open()
	doc.Write(source)
	doc.Close()
	return doc
}

// GetElementById returns the first factory-created element with the given
// id that is not part of a parsed document. Elements that have joined a
// document are forgotten.
func (r *Registry) GetElementById(id string) *dom.Node {
	if id == "" {
		return nil
	}
	r.pruneCreated()
	for _, el := range r.created {
		if el.ID() == id {
			return el
		}
	}
	return nil
}

// newGlobalDocument builds the stand-in document: node factories, an id
// lookup over factory-created elements and a query surface that is always
// empty.
func (r *Registry) newGlobalDocument() *goja.Object {
	vm := r.runtime.vm
	b := r.binder
	doc := vm.NewObject()

	doc.Set("nodeType", int(dom.DocumentNode))
	doc.Set("nodeName", "#document")
	doc.Set("title", "")

	doc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(r.CreateElement(stringArg(call, 0)))
	})
	doc.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(r.CreateTextNode(stringArg(call, 0)))
	})
	doc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(r.GetElementById(stringArg(call, 0)))
	})

	doc.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return goja.Null()
	})
	for _, name := range []string{"querySelectorAll", "getElementsByTagName", "getElementsByClassName"} {
		doc.Set(name, func(call goja.FunctionCall) goja.Value {
			return vm.NewArray()
		})
	}
	return doc
}

// newDOMParserConstructor builds a DOMParser constructor whose instances
// parse through ParseFromString.
func (r *Registry) newDOMParserConstructor() *goja.Object {
	vm := r.runtime.vm
	proto := vm.NewObject()
	proto.Set("parseFromString", func(call goja.FunctionCall) goja.Value {
		doc := r.ParseFromString(stringArg(call, 0), stringArg(call, 1))
		return r.binder.BindDocument(doc)
	})

	ctor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		return nil
	}).ToObject(vm)
	ctor.Set("prototype", proto)
	proto.DefineDataProperty("constructor", ctor, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	return ctor
}

// newNodeConstants builds the Node object carrying the twelve node type
// codes.
func (r *Registry) newNodeConstants() *goja.Object {
	vm := r.runtime.vm
	node := vm.NewObject()
	for name, t := range dom.NodeTypes() {
		node.Set(name, int(t))
	}
	return node
}
