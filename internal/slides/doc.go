// Package slides reads and creates Google Slides presentations.
//
// Slide content is reduced to text: each page element is reported with its
// kind and the text it holds, which is what a model needs to reason about a
// deck without the full layout tree.
package slides
