// Package jsonref resolves JSON References ($ref) in JSON and YAML documents.
//
// A JSON Reference is an object of the form {"$ref": "uri"} standing in for
// the value found at uri: another document, a part of one selected by a JSON
// Pointer fragment, or a part of the referring document itself. jsonref loads
// documents with every reference replaced by a lazy proxy, resolving (and
// fetching) a target only when the proxy is first used.
//
// # Overview
//
// The library consists of these packages:
//
//   - resolver: Load documents, create lazy references and dereference them
//   - pointer: Evaluate JSON Pointers (RFC 6901) against decoded documents
//   - uristore: Store parsed documents under normalized URIs
//   - referrors: Typed errors shared by all packages, matchable with errors.Is
//
// The jsonref command wraps them for the terminal (resolve, pointer) and as a
// Model Context Protocol server (jsonref mcp).
//
// # Installation
//
//	go get github.com/mdhitche/jsonref
//
// # Quick Start
//
// Load a document and read through a reference:
//
//	doc, err := resolver.Load([]byte(`{"x": {"$ref": "#/y"}, "y": 7}`))
//	if err != nil {
//		log.Fatal(err)
//	}
//	x, _ := resolver.Get(doc, "x") // 7
//
// Load a file with relative references to its neighbors:
//
//	result, err := resolver.LoadWithOptions(
//		resolver.WithFilePath("schemas/pet.json"),
//	)
//	expanded, err := resolver.Expand(result.Data)
//
// Evaluate a JSON Pointer directly:
//
//	v, err := pointer.Resolve(doc, "/definitions/pet")
//
// # Standards
//
//   - JSON Reference: https://datatracker.ietf.org/doc/html/draft-pbryan-zyp-json-ref-03
//   - JSON Pointer: https://datatracker.ietf.org/doc/html/rfc6901
//   - URI reference resolution: https://datatracker.ietf.org/doc/html/rfc3986#section-5
package jsonref
