package js

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/minidom/dom"
)

func newInstalled(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry(NewRuntime(discardLogger()))
	reg.Install()
	require.True(t, reg.IsReady())
	return reg
}

func runBool(t *testing.T, reg *Registry, code string) bool {
	t.Helper()
	return run(t, reg.Runtime(), code).ToBoolean()
}

func runString(t *testing.T, reg *Registry, code string) string {
	t.Helper()
	return run(t, reg.Runtime(), code).String()
}

func TestDOMBinder_SiblingLinks(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var p = document.createElement('ul');
		var a = p.appendChild(document.createElement('li'));
		var b = p.appendChild(document.createElement('li'));
		var c = p.appendChild(document.createTextNode('tail'));
	`)

	assert.True(t, runBool(t, reg, `p.firstChild === a && p.lastChild === c`))
	assert.True(t, runBool(t, reg, `a.nextSibling === b && b.nextSibling === c && c.nextSibling === null`))
	assert.True(t, runBool(t, reg, `c.previousSibling === b && b.previousSibling === a && a.previousSibling === null`))
	assert.True(t, runBool(t, reg, `a.parentNode === p && c.parentNode === p && p.parentNode === null`))
	assert.True(t, runBool(t, reg, `p.childNodes.length === 3 && p.childNodes[1] === b`))
	assert.True(t, runBool(t, reg, `p.children.length === 2 && p.childElementCount === 2`))
}

func TestDOMBinder_IsCodeAlwaysPresent(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var p = document.createElement('pre');
		var t = document.createTextNode('x');
		p.appendChild(t);
	`)

	assert.True(t, runBool(t, reg, `typeof p.isCode === 'boolean' && typeof t.isCode === 'boolean'`))
	assert.False(t, runBool(t, reg, `p.isCode || t.isCode`))
	assert.True(t, runBool(t, reg, `t.isCode = true; t.isCode === true`))
}

func TestDOMBinder_NodeIdentity(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `var e = document.createElement('div'); e.innerHTML = '<p>a</p>';`)

	assert.True(t, runBool(t, reg, `e.firstChild === e.firstChild`))
	assert.True(t, runBool(t, reg, `e.firstChild.parentNode === e`))
	assert.True(t, runBool(t, reg, `e.querySelector('p') === e.childNodes[0]`))
}

func TestDOMBinder_TextContent(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `var e = document.createElement('div'); e.appendChild(document.createElement('b'));`)

	assert.Equal(t, "hello", runString(t, reg, `e.textContent = "hello"; e.textContent`))
	assert.True(t, runBool(t, reg, `e.childNodes.length === 1 && e.firstChild.nodeType === Node.TEXT_NODE`))
	assert.True(t, runBool(t, reg, `e.textContent = null; e.childNodes.length === 0 && e.textContent === ''`))
}

func TestDOMBinder_TextNodeFields(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `var t = document.createTextNode('abc');`)

	assert.True(t, runBool(t, reg, `t.nodeType === 3 && t.nodeName === '#text'`))
	assert.True(t, runBool(t, reg, `t.data = 'x'; t.nodeValue === 'x' && t.textContent === 'x'`))
	assert.True(t, runBool(t, reg, `t.nodeValue = 'y'; t.data === 'y' && t.length === 1`))
	assert.True(t, runBool(t, reg, `t.textContent = 'z'; t.data === 'z'`))
}

func TestDOMBinder_InnerHTMLDropsScript(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var e = document.createElement('div');
		e.innerHTML = '<div><script>alert(1)</script><p>ok</p></div>';
	`)

	assert.True(t, runBool(t, reg, `e.getElementsByTagName('script').length === 0`))
	assert.True(t, runBool(t, reg, `e.querySelectorAll('p').length === 1`))
	assert.Equal(t, "ok", runString(t, reg, `e.querySelector('p').textContent`))
}

func TestDOMBinder_InnerHTMLDropsHandlers(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var e = document.createElement('div');
		e.innerHTML = '<a href="x" onclick="evil()">t</a>';
		var a = e.firstChild;
	`)

	assert.True(t, runBool(t, reg, `a.tagName === 'A' && a.getAttribute('onclick') === null`))
	assert.Equal(t, "x", runString(t, reg, `a.getAttribute('href')`))
	assert.True(t, runBool(t, reg, `a.hasAttribute('href') && !a.hasAttribute('onclick')`))
}

func TestDOMBinder_InnerHTMLGetterIsCached(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var e = document.createElement('div');
		e.innerHTML = '<p onclick="x()">a</p>';
		e.appendChild(document.createElement('span'));
	`)

	assert.Equal(t, `<p onclick="x()">a</p>`, runString(t, reg, `e.innerHTML`))
	assert.Equal(t, `<div><p>a</p><span></span></div>`, runString(t, reg, `e.outerHTML`))
	assert.Equal(t, "", runString(t, reg, `e.innerHTML = null; e.innerHTML`))
}

func TestDOMBinder_QuerySelectorAllClass(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var host = document.createElement('div');
		host.innerHTML = '<div id="a" class="b"><span class="b">x</span></div>';
		var E = host.firstChild;
		var found = E.querySelectorAll('.b');
	`)

	assert.True(t, runBool(t, reg, `found.length === 1 && found[0].tagName === 'SPAN'`))
	assert.True(t, runBool(t, reg, `E.matches('#a') && E.matches('p, .b') && !E.matches('span')`))
}

func TestDOMBinder_RemoveMiddle(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var p = document.createElement('ol');
		var a = p.appendChild(document.createElement('li'));
		var b = p.appendChild(document.createElement('li'));
		var c = p.appendChild(document.createElement('li'));
		b.remove();
	`)

	assert.True(t, runBool(t, reg, `p.childNodes.length === 2`))
	assert.True(t, runBool(t, reg, `a.nextSibling === c && c.previousSibling === a`))
	assert.True(t, runBool(t, reg, `b.parentNode === null && b.nextSibling === null && b.previousSibling === null`))
	assert.True(t, runBool(t, reg, `p.removeChild(c) === c && p.childNodes.length === 1`))
	assert.True(t, runBool(t, reg, `p.removeChild(c) === null`))
}

func TestDOMBinder_CloneNodeIndependent(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var e = document.createElement('div');
		e.className = 'orig';
		e.innerHTML = '<p>one</p><p>two</p>';
		var c = e.cloneNode(true);
	`)

	assert.True(t, runBool(t, reg, `c !== e && c.textContent === e.textContent`))
	assert.True(t, runBool(t, reg, `c.className === 'orig' && c.parentNode === null`))
	run(t, reg.Runtime(), `c.firstChild.textContent = 'changed'; c.removeChild(c.lastChild);`)
	assert.Equal(t, "onetwo", runString(t, reg, `e.textContent`))
	assert.True(t, runBool(t, reg, `e.childNodes.length === 2 && c.childNodes.length === 1`))
	assert.True(t, runBool(t, reg, `e.cloneNode(false).childNodes.length === 0`))
}

func TestDOMBinder_Attributes(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var e = document.createElement('a');
		e.setAttribute('href', '/x');
		e.setAttribute('TITLE', 't');
		e.id = 'main';
	`)

	assert.True(t, runBool(t, reg, `e.getAttribute('id') === 'main' && e.id === 'main'`))
	assert.Equal(t, "href,title,id", runString(t, reg, `e.getAttributeNames().join(',')`))
	assert.True(t, runBool(t, reg, `e.attributes[0].name === 'href' && e.attributes[0].value === '/x'`))
	assert.True(t, runBool(t, reg, `e.removeAttribute('href'); e.getAttribute('href') === null`))
	assert.True(t, runBool(t, reg, `e.localName === 'a' && e.nodeName === 'A' && e.nodeValue === null`))
}

func TestDOMBinder_AppendChildBadArguments(t *testing.T) {
	reg := newInstalled(t)
	run(t, reg.Runtime(), `
		var e = document.createElement('div');
		var t = document.createTextNode('x');
	`)

	assert.True(t, runBool(t, reg, `e.appendChild(null) === null && e.appendChild({}) === null`))
	assert.True(t, runBool(t, reg, `e.appendChild(e) === e && e.childNodes.length === 0`))
	assert.True(t, runBool(t, reg, `t.appendChild(e); t.childNodes.length === 0 && e.parentNode === null`))
	assert.Empty(t, reg.Runtime().Errors())
}

func TestDOMBinder_BindDocument(t *testing.T) {
	reg := newInstalled(t)
	doc := dom.ParseDocument(`<title>Doc</title><body><p id="x">hi</p></body>`)
	reg.Runtime().VM().Set("d", reg.Binder().BindDocument(doc))

	assert.Same(t, reg.Binder().BindDocument(doc), reg.Binder().BindDocument(doc))
	assert.Equal(t, "Doc", runString(t, reg, `d.title`))
	assert.Equal(t, "complete", runString(t, reg, `d.readyState`))
	assert.True(t, runBool(t, reg, `d.nodeType === Node.DOCUMENT_NODE`))
	assert.True(t, runBool(t, reg, `d.firstChild === d.documentElement && d.body.parentNode === d.documentElement`))
	assert.True(t, runBool(t, reg, `d.getElementById('x') === d.querySelector('#x')`))
	assert.True(t, runBool(t, reg, `d.getElementsByTagName('BODY')[0] === d.body`))
	assert.True(t, runBool(t, reg, `d.getElementsByTagName('p').length === 0`))
}

func TestDOMBinder_DocumentWriteCycle(t *testing.T) {
	reg := newInstalled(t)
	doc := reg.CreateDocument("")
	reg.Runtime().VM().Set("d", reg.Binder().BindDocument(doc))

	run(t, reg.Runtime(), `d.open(); d.write('<title>T</title>', 'body text');`)
	assert.Equal(t, "loading", runString(t, reg, `d.readyState`))
	run(t, reg.Runtime(), `d.close();`)

	assert.Equal(t, "T", runString(t, reg, `d.title`))
	assert.Contains(t, runString(t, reg, `d.body.textContent`), "body text")
	assert.Equal(t, dom.StateParsed, doc.State())
}
