// Package network owns the layer connection graph and its compilation.
//
// A [Network] is an ordered collection of named [Layer] vertices joined by
// directed connections. The package enforces name uniqueness and acyclicity,
// derives each layer's kind (input, output, hidden, unconnected) from the
// live topology, resolves positional input/output banks, assigns depth
// levels for layered rendering, and incrementally compiles executable
// sub-graphs through the engine boundary.
//
// # Building a network
//
//	net := network.New("xor")
//	net.AddLayer(network.NewLayer("input", 2))
//	net.AddLayer(network.NewLayer("hidden", 5).WithActivation("relu"))
//	net.AddLayer(network.NewLayer("output", 1).WithActivation("sigmoid"))
//	net.ConnectAll()
//	err := net.Compile(engine.NewSymbolic())
//
// After Compile, the network exposes its bank orders and per-layer resolved
// input names, and [Network.Subgraph] answers "what does the computation at
// any layer look like, given a value injected at any other layer" without
// recompiling shared ancestors.
//
// # Concurrency
//
// A Network assumes one in-flight structural operation at a time; callers
// mutating or compiling the same instance concurrently must serialize.
// Traversals use call-local visited sets, so read-only queries are safe to
// run concurrently once compilation has finished, and the subgraph cache
// guards its own build transitions with a mutex.
package network
