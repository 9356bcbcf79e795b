// Package linker stitches per-edge peaks into obstacle segments: continuous
// elevated barriers that run through one or more grid cells.
//
// What:
//
//   - Every peak becomes a node with a world-space extent on its edge line.
//   - Cross-cell links join a peak on (X, side) to the best peak on the
//     facing edge of each neighbor Y, when their extents overlap or lie
//     within SearchPrecision and their heights differ by at most
//     MinProminence.
//   - Intra-cell links join a peak to the best peak on each other side of
//     the same cell when the ridge between them, sampled on the cell's DEM
//     window, never dips more than MinProminence below the lower of the two.
//   - Links are merged with a disjoint-set forest, so linking is transitive.
//   - Components of two or more peaks become ObstacleSegments; a segment is
//     reported only when its crest (lowest peak) stands at least
//     MinObstacleHeight above its surroundings (highest peak base).
//
// Tie-break:
//
//	Among candidates on one target edge the smallest positional offset wins,
//	then the smallest height difference, then the lowest PeakRef. Two peaks
//	are linked only when each is the other's best candidate, so a peak
//	joins at most one peak per target edge.
//
// Complexity:
//
//   - Index build: O(P log P) for P peaks (R-tree inserts).
//   - Linking:     O(P·(log P + c)) cross-cell, O(P·k·L) intra-cell for k
//     peaks per cell and ridge length L.
//   - Merge:       O(P·α(P)).
package linker
