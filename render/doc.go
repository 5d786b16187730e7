// Package render turns a walk into cytoscape.js elements and styles.
//
// Every artist becomes a node with class "anchor" (first and last visit),
// "path" (any other visit) or "basic" (never visited). Every collaboration
// becomes an edge labeled with its release; it gets class "path" when both
// endpoints were visited and "basic" otherwise.
package render
