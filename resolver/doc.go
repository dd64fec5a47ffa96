// Package resolver loads JSON and YAML documents and resolves the JSON
// References ($ref) inside them lazily.
//
// Loading a document replaces every {"$ref": "..."} object with a *Ref. A Ref
// knows only its target URI until it is first resolved; then its
// [Dereferencer] looks the target document up in its store, fetches it on a
// miss, and evaluates the URI fragment as a JSON Pointer. The result is
// memoized on the Ref.
//
// # Quick Start
//
// Load a document and read through its references:
//
//	doc, err := resolver.Load([]byte(`{"x": {"$ref": "#/y"}, "y": 7}`))
//	if err != nil {
//		log.Fatal(err)
//	}
//	x, err := resolver.Get(doc, "x") // 7
//
// Load a file; relative references resolve against its location:
//
//	result, err := resolver.LoadWithOptions(
//		resolver.WithFilePath("schemas/pet.json"),
//		resolver.WithLogger(resolver.NewSlogAdapter(slog.Default())),
//	)
//
// Or create a reusable Dereferencer with pre-seeded documents:
//
//	d := resolver.New(map[string]any{"mem://defs": defs})
//	doc, _ := d.Load(data, "mem://root")
//	v, _ := d.Dereference("mem://defs#/definitions/id")
//
// # Working with Refs
//
// Go cannot make a proxy indistinguishable from the value it stands for, so
// code that walks a loaded tree type-switches on *Ref or uses the helpers
// [Value], [Get], [Len], [Equal] and [Expand], which resolve as they go. A Ref
// marshals to JSON and YAML as its resolved value and prints as it too.
//
// # Fetching and Security
//
// http and https references are fetched with a 30-second timeout and a
// 10MB size limit (see [WithMaxFileSize]). File references are disabled
// unless a base directory is configured with [WithFileRefs]; reads outside
// that directory fail with an error matching [referrors.ErrPathTraversal].
// Replace the built-in fetching entirely with [WithFetcher].
//
// Fetched documents are stored under their normalized URI, so references that
// differ only in fragment, case of scheme or host, default port or
// percent-encoding share a single fetch. Failed fetches are not stored; the
// next resolution tries again.
//
// # Circular References
//
// A reference whose resolution leads back to itself fails with an error
// matching [referrors.ErrCircularReference]. Recursive structures whose
// references point at containers (such as a tree schema referring to itself)
// load and navigate normally; only [Expand] refuses them, and
// [ExpandPreservingCycles] writes the repeated reference back as a reference
// object: with its text as written when it comes from the root document, and
// with its absolute URI otherwise.
// Chains of nested dereferences are bounded by [WithMaxRefDepth].
//
// # Concurrency
//
// A Dereferencer and the Refs it creates are not safe for concurrent use.
package resolver
