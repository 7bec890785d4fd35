// Package trace reads, writes, generates and replays allocation traces.
//
// A trace is a text file with a four-line header followed by one operation
// per line:
//
//	<suggested heap size>
//	<number of ids>
//	<number of ops>
//	<weight>
//	a <id> <size>     allocate size bytes and remember the block as id
//	r <id> <size>     reallocate block id to size bytes
//	f <id>            free block id
//
// Blank lines and lines starting with '#' are ignored.
//
// Replay drives an alloc.Allocator through a trace and reports space
// utilization and throughput. With validation enabled it also fills every
// payload with an id-derived pattern and verifies that blocks stay aligned,
// inside the region, disjoint, and that their contents survive until freed.
package trace
