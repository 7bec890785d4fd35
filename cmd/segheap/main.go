// Command segheap replays allocation traces against the segregated
// free-list allocator and reports utilization and throughput.
package main

func main() {
	execute()
}
