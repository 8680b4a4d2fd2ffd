// Package anglepath finds cheap sequences of motions that turn a facing
// angle into another one.
//
// There are 65536 angles, 0x0000 through 0xFFFF. Each motion (an ess, a
// turn, a sideroll, a shield cancel, ...) moves the angle in its own way,
// often not linearly and not invertibly, so motions are treated as opaque
// functions from angle to angle with a cost attached. A motion can be
// cheaper right after another one (repeated esses), and motions that need
// the target lock can be banned out of some angle ranges.
//
// The work is split into small packages:
//
//	angle/       the 16-bit state and its text forms
//	cost/        exact fixed-point costs
//	motion/      the motion catalog, movement groups and transition table
//	costmodel/   the chained cost of motion B after motion A
//	avoid/       forbidden ranges for target-lock motions
//	explore/     slack-tolerant Dijkstra that keeps one edge per motion
//	navigate/    lazy enumeration of near-optimal paths, Collect
//	format/      run-length step listing of a path
//	planner/     one full search over many targets, with caching
//	report/      text, Markdown and JSON output
//	server/      HTTP API
//	cmd/anglepath  CLI: find, serve, motions, version
//
// Quick example:
//
//	model, _ := costmodel.New(costmodel.DefaultTable(), []motion.Group{motion.Basic})
//	g, _ := explore.Explore(model, motion.DefaultTable, []angle.State{0x0000})
//	routes, _ := navigate.Collect(g, model, 0x0E10, 35, 4)
//	// routes[0]: cost 0.825, ess left ×2
package anglepath
