package browser

// The page-side programs. These three scripts are the only JavaScript this
// package ever runs inside a page; no eval surface is exposed to callers.

// markerSnapshotJS walks the DOM in document order and serializes the
// interactive surface as marker lines (`[12]<a href="/x"/>`) with
// tab-indented element text, plus plain prose lines for text blocks. Open
// shadow roots are walked too and announced with a |SHADOW(tag)| token, and
// a trailing |SCROLL(...)| token reports how much page remains below the
// fold. While walking it rebuilds window.__webdeck_refs (marker id to
// element) and bumps window.__webdeck_gen, which together let a later
// action resolve a marker back to its element and detect that a snapshot
// has gone stale.
const markerSnapshotJS = `
() => {
	const INTERACTIVE = { A: 1, BUTTON: 1, INPUT: 1, TEXTAREA: 1, SELECT: 1 };
	const SKIP = { SCRIPT: 1, STYLE: 1, NOSCRIPT: 1, TEMPLATE: 1, IFRAME: 1, SVG: 1, CANVAS: 1 };
	const ATTRS = ['aria-label', 'aria-description', 'title', 'alt', 'data-tooltip',
		'data-title', 'data-label', 'data-text', 'data-content', 'placeholder',
		'value', 'name', 'id', 'class', 'href', 'type', 'role'];

	const refs = {};
	const lines = [];
	let nextId = 1;

	const clean = (s) => (s || '').replace(/[>\t\r]/g, ' ').replace(/\s+/g, ' ').trim();

	const hidden = (el) => {
		const style = window.getComputedStyle(el);
		return style.display === 'none' || style.visibility === 'hidden';
	};

	const marker = (el) => {
		const id = nextId++;
		refs[String(id)] = el;
		let attrs = '';
		for (const name of ATTRS) {
			const v = el.getAttribute(name);
			if (v) attrs += ' ' + name + '="' + clean(v).replace(/"/g, "'").slice(0, 120) + '"';
		}
		lines.push('[' + id + ']<' + el.tagName.toLowerCase() + attrs + '/>');
		const text = clean(el.innerText);
		if (text) lines.push('\t' + text.slice(0, 160));
	};

	const walk = (node) => {
		for (const child of node.childNodes) {
			if (child.nodeType === Node.TEXT_NODE) {
				const text = clean(child.textContent);
				if (text.length > 1) lines.push(text);
				continue;
			}
			if (child.nodeType !== Node.ELEMENT_NODE) continue;
			// SVG and other foreign elements report lowercase tag names.
			const tag = child.tagName.toUpperCase();
			if (SKIP[tag]) continue;
			if (INTERACTIVE[tag]) {
				// Hidden inputs still get markers; the classifier owns
				// the decision to drop them.
				if (tag !== 'INPUT' && hidden(child)) continue;
				marker(child);
				continue;
			}
			if (hidden(child)) continue;
			if (child.shadowRoot) {
				lines.push('|SHADOW(' + tag.toLowerCase() + ')|');
				walk(child.shadowRoot);
			}
			walk(child);
		}
	};

	if (document.body) walk(document.body);

	const below = Math.max(0, Math.round(
		document.documentElement.scrollHeight - window.innerHeight - window.scrollY));
	if (below > 0) lines.push('|SCROLL(' + below + ' px below - scroll down for more)|');

	window.__webdeck_refs = refs;
	window.__webdeck_gen = (window.__webdeck_gen || 0) + 1;

	return {
		title: document.title || '',
		url: location.href,
		text: lines.join('\n'),
		gen: window.__webdeck_gen
	};
}
`

// readContentJS extracts the page's main prose. It prefers the first match
// from a list of common content containers, falls back to body, strips the
// chrome (nav, ads, comments) from a detached clone, and returns the text
// with whitespace normalized.
const readContentJS = `
() => {
	const selectors = [
		'main',
		'article',
		'[role="main"]',
		'.content',
		'.post-content',
		'.article-content',
		'.entry-content',
		'#content',
		'#main'
	];

	let mainEl = null;
	for (const sel of selectors) {
		mainEl = document.querySelector(sel);
		if (mainEl) break;
	}
	if (!mainEl) mainEl = document.body;
	if (!mainEl) return '';

	const clone = mainEl.cloneNode(true);

	const removeSelectors = [
		'script', 'style', 'nav', 'header', 'footer',
		'aside', '.sidebar', '.ad', '.advertisement',
		'.comments', '.social-share', '[role="navigation"]',
		'.menu', '.nav', 'iframe', 'noscript'
	];
	for (const sel of removeSelectors) {
		clone.querySelectorAll(sel).forEach(el => el.remove());
	}

	let text = clone.innerText || clone.textContent || '';
	text = text.replace(/\n{3,}/g, '\n\n');
	text = text.replace(/[ \t]+/g, ' ');
	return text.trim();
}
`

// stealthPatchJS papers over the loudest automation tells: headless Chrome
// leaks through navigator.webdriver, a missing window.chrome, an empty
// plugin list, and a permissions API that answers differently than a real
// profile. Installed as an init script and re-applied after each
// navigation, always best-effort. Sites doing serious fingerprinting will
// not be fooled.
const stealthPatchJS = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = { runtime: {} };
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications'
		? Promise.resolve({ state: Notification.permission })
		: originalQuery(parameters)
);
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
`

// Evaluate wants a function definition while the init script wants bare
// statements, so the re-apply path wraps the same body.
const stealthEvalJS = "() => {" + stealthPatchJS + "}"

// resolveProbeJS reports whether a marker id is still resolvable and which
// snapshot generation the page is at.
const resolveProbeJS = `
(id) => ({
	gen: window.__webdeck_gen || 0,
	held: !!(window.__webdeck_refs && window.__webdeck_refs[id])
})
`

// resolveRefJS returns the element handle registered for a marker id.
const resolveRefJS = `(id) => window.__webdeck_refs[id]`
