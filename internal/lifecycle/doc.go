// Package lifecycle drives loaded modules through the boot sequence.
//
// A boot has three strictly ordered phases separated by barriers:
//
//  1. Preload: every module reference is instantiated concurrently. Modules
//     that fail to load or are not recognized are dropped.
//  2. Init: OnInit is called on every module that implements Initializer.
//  3. Start: OnStart is called on every module that implements Starter.
//
// No start hook runs before every init hook has been attempted. A hook that
// returns an error or panics is logged and recorded; the module stays in the
// boot and still gets its start hook. Relative order between modules within
// a phase is not part of the contract.
package lifecycle
