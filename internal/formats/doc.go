// Package formats reads and writes ASC CDL files: single corrections (.cc),
// collections (.ccc), decision lists (.cdl), Avid Log Exchange (.ale) and
// DaVinci FLEx (.flex) telecine lists.
//
// XML inputs are tokenized into a small element tree and every element's
// immediate children are walked once, in document order. That single forward
// scan is what keeps interleaved Description elements in the order they were
// written. Historical tag spellings (SopNode, ASC_SOP, ...) are accepted on
// input; the writers always emit SOPNode and SATNode.
//
// Every parse registers its corrections with the caller's cdl.Registry. A
// parse that fails releases whatever it registered before returning.
package formats
