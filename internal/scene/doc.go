// Package scene models the host application's scene database: text objects,
// collections, materials, node-graph effects, actions and NLA strips. The
// operators only talk to the Host interface; Memory is the in-process
// implementation used by the CLI, the GUI and the tests.
package scene
