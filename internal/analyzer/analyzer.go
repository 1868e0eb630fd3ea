/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package analyzer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// DependencyGraph holds the tables of one script and the tables each of them references
type DependencyGraph struct {
	order []string
	nodes map[string]*Node
	edges map[string][]string // table -> list of tables it depends on
}

type Node struct {
	Name    string
	Table   *types.TableDefinition
	Visited bool
	InStack bool
}

type Analyzer struct {
	verbose bool
	out     io.Writer
}

func New(verbose bool) *Analyzer {
	return &Analyzer{
		verbose: verbose,
		out:     os.Stdout,
	}
}

// SetOutput sets the destination of verbose output
func (a *Analyzer) SetOutput(w io.Writer) {
	a.out = w
}

// AnalyzeDependencies builds the graph in input order. References to tables outside the input
// and self-references do not create edges.
func (a *Analyzer) AnalyzeDependencies(tables []types.TableDefinition) *DependencyGraph {
	graph := &DependencyGraph{
		nodes: make(map[string]*Node),
		edges: make(map[string][]string),
	}

	for i := range tables {
		key := strings.ToLower(tables[i].Name)
		if _, exists := graph.nodes[key]; exists {
			continue
		}
		graph.order = append(graph.order, key)
		graph.nodes[key] = &Node{
			Name:  tables[i].Name,
			Table: &tables[i],
		}
		graph.edges[key] = []string{}
	}

	for _, from := range graph.order {
		table := graph.nodes[from].Table
		for _, dep := range table.DependsOn() {
			to := strings.ToLower(dep)
			if _, exists := graph.nodes[to]; exists {
				graph.edges[from] = append(graph.edges[from], to)
				if a.verbose {
					fmt.Fprintf(a.out, "Dependency: %s -> %s\n", table.Name, dep)
				}
			}
		}
	}

	return graph
}

// TopologicalSort returns table names so that every table follows the tables it references.
// Ties keep input order.
func (a *Analyzer) TopologicalSort(graph *DependencyGraph) ([]string, error) {
	var sorted []string
	var stack []string

	for _, node := range graph.nodes {
		node.Visited = false
		node.InStack = false
	}

	for _, name := range graph.order {
		if !graph.nodes[name].Visited {
			if err := a.dfsVisit(graph, name, &sorted, &stack); err != nil {
				return nil, err
			}
		}
	}

	if a.verbose {
		fmt.Fprintln(a.out, "Table creation order:")
		for i, table := range sorted {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, table)
		}
	}

	return sorted, nil
}

func (a *Analyzer) dfsVisit(graph *DependencyGraph, nodeName string, sorted *[]string, stack *[]string) error {
	node := graph.nodes[nodeName]

	if node.InStack {
		return errors.NewCircularDependencyError(a.findCycle(graph, *stack, nodeName))
	}

	if node.Visited {
		return nil
	}

	node.Visited = true
	node.InStack = true
	*stack = append(*stack, nodeName)

	for _, dep := range graph.edges[nodeName] {
		if err := a.dfsVisit(graph, dep, sorted, stack); err != nil {
			return err
		}
	}

	node.InStack = false
	*stack = (*stack)[:len(*stack)-1]
	*sorted = append(*sorted, node.Name)

	return nil
}

func (a *Analyzer) findCycle(graph *DependencyGraph, stack []string, target string) []string {
	for i, key := range stack {
		if key == target {
			var cycle []string
			for _, k := range stack[i:] {
				cycle = append(cycle, graph.nodes[k].Name)
			}
			return append(cycle, graph.nodes[target].Name)
		}
	}
	return []string{graph.nodes[target].Name}
}

// OrderTables returns the tables in creation order. When the references form a cycle the input
// order is returned together with a circular dependency error; callers that attach foreign keys
// after creation can treat that error as a warning.
func (a *Analyzer) OrderTables(tables []types.TableDefinition) ([]types.TableDefinition, error) {
	graph := a.AnalyzeDependencies(tables)

	order, err := a.TopologicalSort(graph)
	if err != nil {
		var fallback []types.TableDefinition
		for _, key := range graph.order {
			fallback = append(fallback, *graph.nodes[key].Table)
		}
		return fallback, err
	}

	ordered := make([]types.TableDefinition, 0, len(order))
	for _, name := range order {
		ordered = append(ordered, *graph.nodes[strings.ToLower(name)].Table)
	}
	return ordered, nil
}
