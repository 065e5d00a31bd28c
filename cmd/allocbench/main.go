// Command allocbench drives the allockit strategies through repeatable
// workloads and reports how often they reach their parent allocator.
package main

func main() {
	execute()
}
