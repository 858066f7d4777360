// Package config loads board presets for the solver.
//
// A preset is a JSON file in the configs directory. Its id is the file name
// without the .json extension. Each preset gives the board dimensions, an
// optional layout of pre-filled cells, and whether completed rows are
// cleared when a piece locks in a session.
//
// Layout rows are written top to bottom with one character per column:
// '.' for an empty cell and a piece letter (I, J, L, O, S, T, Z) for a
// filled one.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadConfig("tspin")
//	presets, err := manager.ListConfigs()
//	fallback := manager.GetDefault()
//
// The default preset is "empty". When the directory has no such file the
// first valid preset is used, and when there is none a built-in empty
// 22x10 board is.
package config
