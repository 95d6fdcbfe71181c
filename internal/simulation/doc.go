// Package simulation provides a multi-run test harness for validating the
// emergent dynamics of the spreading engine.
//
// The simulation exercises the real Pipeline, Engine, SQLiteGraphStore and
// journal codec, no mocks. Scenarios are Go values naming a graph, the
// team seeds and an engine config; the runner stores the graph, replays it
// for a configurable number of runs and captures each run's history,
// final coloring and standings for property-based assertions.
//
// Each test gets an isolated SQLite database via t.TempDir() and a sandboxed
// HOME to prevent touching user data.
//
// Usage:
//
//	func TestPathTakeover(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:  "path-takeover",
//	        Graph: graph.Path(10),
//	        Seeds: spreading.SeedSet{"red": {"0"}},
//	    })
//	    simulation.AssertStable(t, result)
//	    simulation.AssertTeamSize(t, result, "red", 10)
//	}
package simulation
