package js

import (
	"github.com/dop251/goja"

	"github.com/chrisuehlinger/minidom/dom"
)

// goNodeKey is the hidden property holding the Go node behind a JS object.
const goNodeKey = "_goNode"

// DOMBinder exposes dom nodes and documents to JavaScript. Each Go node is
// bound to exactly one JS object, so identity comparisons hold across
// repeated property reads.
type DOMBinder struct {
	runtime *Runtime
	nodeMap map[*dom.Node]*goja.Object
	docMap  map[*dom.Document]*goja.Object
}

// NewDOMBinder creates a new DOM binder for the given runtime.
func NewDOMBinder(runtime *Runtime) *DOMBinder {
	return &DOMBinder{
		runtime: runtime,
		nodeMap: make(map[*dom.Node]*goja.Object),
		docMap:  make(map[*dom.Document]*goja.Object),
	}
}

// BindNode returns the JS object for node, creating it on first use. A nil
// node is bound to null.
func (b *DOMBinder) BindNode(node *dom.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	if obj, ok := b.nodeMap[node]; ok {
		return obj
	}

	vm := b.runtime.vm
	obj := vm.NewObject()
	obj.DefineDataProperty(goNodeKey, vm.ToValue(node), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	b.nodeMap[node] = obj

	b.bindNodeProperties(obj, node)
	if node.IsText() {
		b.bindTextProperties(obj, node)
	} else {
		b.bindElementProperties(obj, node)
	}
	if node.IsParserRoot() {
		obj.DefineDataProperty(dom.ParserMarker, vm.ToValue(true), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	}
	return obj
}

// ClearCache drops every node and document binding.
func (b *DOMBinder) ClearCache() {
	b.nodeMap = make(map[*dom.Node]*goja.Object)
	b.docMap = make(map[*dom.Document]*goja.Object)
}

// getGoNode extracts the Go node from a bound JS value, or returns nil.
func (b *DOMBinder) getGoNode(v goja.Value) *dom.Node {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	if inner := obj.Get(goNodeKey); inner != nil {
		if node, ok := inner.Export().(*dom.Node); ok {
			return node
		}
	}
	return nil
}

// nodeList converts nodes into a JS array of bound nodes.
func (b *DOMBinder) nodeList(nodes []*dom.Node) *goja.Object {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = b.BindNode(n)
	}
	return b.runtime.vm.NewArray(items...)
}

// stringArg returns argument i as a string; undefined and null yield "".
func stringArg(call goja.FunctionCall, i int) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// stringValue is stringArg for setter values.
func stringValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func (b *DOMBinder) defineGetter(obj *goja.Object, name string, get func() goja.Value) {
	vm := b.runtime.vm
	obj.DefineAccessorProperty(name, vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return get()
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

func (b *DOMBinder) defineAccessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	vm := b.runtime.vm
	obj.DefineAccessorProperty(name, vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return get()
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0))
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)
}

// bindNodeProperties defines what elements and text nodes share: type and
// name, tree links, textContent, the isCode flag and the mutation methods.
func (b *DOMBinder) bindNodeProperties(jsObj *goja.Object, node *dom.Node) {
	vm := b.runtime.vm

	b.defineGetter(jsObj, "nodeType", func() goja.Value {
		return vm.ToValue(int(node.NodeType()))
	})
	b.defineGetter(jsObj, "nodeName", func() goja.Value {
		return vm.ToValue(node.NodeName())
	})

	b.defineGetter(jsObj, "parentNode", func() goja.Value {
		return b.BindNode(node.ParentNode())
	})
	b.defineGetter(jsObj, "parentElement", func() goja.Value {
		return b.BindNode(node.ParentNode())
	})
	b.defineGetter(jsObj, "previousSibling", func() goja.Value {
		return b.BindNode(node.PreviousSibling())
	})
	b.defineGetter(jsObj, "nextSibling", func() goja.Value {
		return b.BindNode(node.NextSibling())
	})
	b.defineGetter(jsObj, "firstChild", func() goja.Value {
		return b.BindNode(node.FirstChild())
	})
	b.defineGetter(jsObj, "lastChild", func() goja.Value {
		return b.BindNode(node.LastChild())
	})
	b.defineGetter(jsObj, "childNodes", func() goja.Value {
		return b.nodeList(node.ChildNodes())
	})

	b.defineAccessor(jsObj, "textContent", func() goja.Value {
		return vm.ToValue(node.TextContent())
	}, func(v goja.Value) {
		node.SetTextContent(stringValue(v))
	})

	b.defineAccessor(jsObj, "isCode", func() goja.Value {
		return vm.ToValue(node.IsCode())
	}, func(v goja.Value) {
		node.SetIsCode(v != nil && v.ToBoolean())
	})

	jsObj.Set("hasChildNodes", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(node.HasChildNodes())
	})

	// appendChild returns its argument. Arguments that are not nodes, and
	// appends that would break the tree, leave everything unchanged.
	jsObj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.getGoNode(call.Argument(0))
		if child == nil {
			return goja.Null()
		}
		node.AppendChild(child)
		return b.BindNode(child)
	})

	jsObj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(node.RemoveChild(b.getGoNode(call.Argument(0))))
	})

	jsObj.Set("remove", func(call goja.FunctionCall) goja.Value {
		node.Remove()
		return goja.Undefined()
	})

	jsObj.Set("cloneNode", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(node.CloneNode(call.Argument(0).ToBoolean()))
	})

	jsObj.Set("contains", func(call goja.FunctionCall) goja.Value {
		other := b.getGoNode(call.Argument(0))
		return vm.ToValue(other != nil && node.Contains(other))
	})
}

func (b *DOMBinder) bindTextProperties(jsObj *goja.Object, node *dom.Node) {
	vm := b.runtime.vm

	for _, name := range []string{"data", "nodeValue"} {
		b.defineAccessor(jsObj, name, func() goja.Value {
			return vm.ToValue(node.Data())
		}, func(v goja.Value) {
			node.SetData(stringValue(v))
		})
	}
	b.defineGetter(jsObj, "length", func() goja.Value {
		return vm.ToValue(len([]rune(node.Data())))
	})
}

func (b *DOMBinder) bindElementProperties(jsObj *goja.Object, node *dom.Node) {
	vm := b.runtime.vm

	b.defineGetter(jsObj, "tagName", func() goja.Value {
		return vm.ToValue(node.TagName())
	})
	b.defineGetter(jsObj, "localName", func() goja.Value {
		return vm.ToValue(node.LocalName())
	})
	b.defineGetter(jsObj, "nodeValue", func() goja.Value {
		return goja.Null()
	})

	b.defineAccessor(jsObj, "id", func() goja.Value {
		return vm.ToValue(node.ID())
	}, func(v goja.Value) {
		node.SetAttribute("id", stringValue(v))
	})
	b.defineAccessor(jsObj, "className", func() goja.Value {
		return vm.ToValue(node.ClassName())
	}, func(v goja.Value) {
		node.SetAttribute("class", stringValue(v))
	})

	b.defineGetter(jsObj, "children", func() goja.Value {
		return b.nodeList(node.Children())
	})
	b.defineGetter(jsObj, "childElementCount", func() goja.Value {
		return vm.ToValue(node.ChildElementCount())
	})

	b.defineAccessor(jsObj, "innerHTML", func() goja.Value {
		return vm.ToValue(node.InnerHTML())
	}, func(v goja.Value) {
		node.SetInnerHTML(stringValue(v))
	})
	b.defineGetter(jsObj, "outerHTML", func() goja.Value {
		return vm.ToValue(node.OuterHTML())
	})

	b.defineGetter(jsObj, "attributes", func() goja.Value {
		attrs := node.Attributes()
		items := make([]interface{}, len(attrs))
		for i, a := range attrs {
			attr := vm.NewObject()
			attr.Set("name", a.Name)
			attr.Set("value", a.Value)
			items[i] = attr
		}
		return vm.NewArray(items...)
	})

	jsObj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := node.LookupAttribute(stringArg(call, 0)); ok {
			return vm.ToValue(v)
		}
		return goja.Null()
	})
	jsObj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		node.SetAttribute(stringArg(call, 0), stringArg(call, 1))
		return goja.Undefined()
	})
	jsObj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(node.HasAttribute(stringArg(call, 0)))
	})
	jsObj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		node.RemoveAttribute(stringArg(call, 0))
		return goja.Undefined()
	})
	jsObj.Set("getAttributeNames", func(call goja.FunctionCall) goja.Value {
		names := node.AttributeNames()
		items := make([]interface{}, len(names))
		for i, n := range names {
			items[i] = n
		}
		return vm.NewArray(items...)
	})

	jsObj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(node.QuerySelector(stringArg(call, 0)))
	})
	jsObj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return b.nodeList(node.QuerySelectorAll(stringArg(call, 0)))
	})
	jsObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return b.nodeList(node.GetElementsByTagName(stringArg(call, 0)))
	})
	jsObj.Set("matches", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(node.Matches(stringArg(call, 0)))
	})
}

// BindDocument returns the JS object for doc, creating it on first use.
// body, documentElement and firstChild are read live, because every write
// replaces documentElement.
func (b *DOMBinder) BindDocument(doc *dom.Document) *goja.Object {
	if obj, ok := b.docMap[doc]; ok {
		return obj
	}

	vm := b.runtime.vm
	jsDoc := vm.NewObject()
	b.docMap[doc] = jsDoc

	b.defineGetter(jsDoc, "nodeType", func() goja.Value {
		return vm.ToValue(int(dom.DocumentNode))
	})
	b.defineGetter(jsDoc, "nodeName", func() goja.Value {
		return vm.ToValue("#document")
	})
	b.defineAccessor(jsDoc, "title", func() goja.Value {
		return vm.ToValue(doc.Title())
	}, func(v goja.Value) {
		doc.SetTitle(stringValue(v))
	})
	b.defineGetter(jsDoc, "readyState", func() goja.Value {
		if doc.State() == dom.StateParsed {
			return vm.ToValue("complete")
		}
		return vm.ToValue("loading")
	})
	b.defineGetter(jsDoc, "body", func() goja.Value {
		return b.BindNode(doc.Body())
	})
	b.defineGetter(jsDoc, "documentElement", func() goja.Value {
		return b.BindNode(doc.DocumentElement())
	})
	b.defineGetter(jsDoc, "firstChild", func() goja.Value {
		return b.BindNode(doc.FirstChild())
	})

	jsDoc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(doc.GetElementById(stringArg(call, 0)))
	})
	jsDoc.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return b.nodeList(doc.GetElementsByTagName(stringArg(call, 0)))
	})
	jsDoc.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(doc.QuerySelector(stringArg(call, 0)))
	})
	jsDoc.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return b.nodeList(doc.QuerySelectorAll(stringArg(call, 0)))
	})
	jsDoc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(doc.CreateElement(stringArg(call, 0)))
	})
	jsDoc.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return b.BindNode(doc.CreateTextNode(stringArg(call, 0)))
	})

	jsDoc.Set("open", func(call goja.FunctionCall) goja.Value {
		doc.Open()
		return jsDoc
	})
	jsDoc.Set("write", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i := range call.Arguments {
			parts[i] = stringArg(call, i)
		}
		doc.Write(parts...)
		return goja.Undefined()
	})
	jsDoc.Set("close", func(call goja.FunctionCall) goja.Value {
		doc.Close()
		return goja.Undefined()
	})

	return jsDoc
}
