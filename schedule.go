package tandem

import (
	"errors"
	"slices"

	"github.com/oliverbestmann/tandem/internal/set"
)

// schedule holds the prepared systems of one ScheduleId in execution order.
type schedule struct {
	id     ScheduleId
	lookup map[SystemId]*preparedSystem
	sets   []*SystemSet

	// systems in insertion order, used as a stable base for ordering
	added []*preparedSystem

	// systems in topological order, rebuilt by UpdateSystemOrdering
	systems []*preparedSystem
}

func newSchedule(id ScheduleId) *schedule {
	return &schedule{
		id:     id,
		lookup: map[SystemId]*preparedSystem{},
	}
}

func (s *schedule) AddSystem(system *preparedSystem) {
	if _, exists := s.lookup[system.Id]; exists {
		return
	}

	s.lookup[system.Id] = system
	s.added = append(s.added, system)
}

func (s *schedule) AddSystemSet(systemSet *SystemSet) {
	if slices.Contains(s.sets, systemSet) {
		return
	}

	s.sets = append(s.sets, systemSet)
}

func (s *schedule) UpdateSystemOrdering() error {
	var configs []*systemConfig

	sets := slices.Clone(s.sets)

	for _, system := range s.added {
		configs = append(configs, system.systemConfig)

		for _, systemSet := range system.sets {
			if !slices.Contains(sets, systemSet) {
				sets = append(sets, systemSet)
			}
		}
	}

	ordering, err := topologicalSystemOrder(configs, sets)
	if err != nil {
		return err
	}

	// recreate list of ordered systems
	s.systems = s.systems[:0]

	for _, id := range ordering {
		system, ok := s.lookup[id]
		if !ok {
			// ordering may mention systems of other schedules
			continue
		}

		s.systems = append(s.systems, system)
	}

	return nil
}

// preparedSystem is a systemConfig whose function has been resolved
// against a World and is ready to run.
type preparedSystem struct {
	*systemConfig

	// LastRun is the tick this system last ran at
	LastRun Tick

	// RawSystem invokes the system function with its parameter values
	// built from the given context. It returns the first return value of
	// the system function, or nil.
	RawSystem func(ctx systemContext) any

	// Predicates are the prepared predicate systems of this system.
	// All of them must return true for the system to run.
	Predicates []*preparedSystem
}

// topologicalSystemOrder orders the given systems so that all Before and
// After constraints hold, including the constraints implied by the system
// sets the systems are members of. Systems without constraints between
// them keep their declaration order.
func topologicalSystemOrder(systems []*systemConfig, sets []*SystemSet) ([]SystemId, error) {
	// collect the member systems of every set
	members := map[*SystemSet][]SystemId{}

	for _, systemSet := range sets {
		members[systemSet] = nil
	}

	for _, sys := range systems {
		for _, systemSet := range sys.sets {
			members[systemSet] = append(members[systemSet], sys.Id)
		}
	}

	// graph and in-degree count for topological sorting
	graph := map[SystemId][]SystemId{}
	inDegree := map[SystemId]int{}

	// collect all nodes, keeping the order they first appear in
	var nodes set.Set[SystemId]
	var orderedNodes []SystemId

	collect := func(id SystemId) {
		if nodes.Insert(id) {
			orderedNodes = append(orderedNodes, id)
		}
	}

	for _, sys := range systems {
		collect(sys.Id)

		for id := range sys.Before.Values() {
			collect(id)
		}

		for id := range sys.After.Values() {
			collect(id)
		}
	}

	edge := func(earlier, later SystemId) {
		graph[earlier] = append(graph[earlier], later)
		inDegree[later]++
	}

	// build graph from the per system constraints
	for _, sys := range systems {
		for later := range sys.Before.Values() {
			edge(sys.Id, later)
		}

		for earlier := range sys.After.Values() {
			edge(earlier, sys.Id)
		}
	}

	// add the edges implied by set ordering
	for _, systemSet := range sets {
		ids := members[systemSet]

		for _, other := range systemSet.before {
			for _, id := range ids {
				for _, otherId := range members[other] {
					edge(id, otherId)
				}
			}
		}

		for _, other := range systemSet.after {
			for _, id := range ids {
				for _, otherId := range members[other] {
					edge(otherId, id)
				}
			}
		}
	}

	// topological sort using Kahn's algorithm
	var queue []SystemId
	for _, node := range orderedNodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []SystemId
	for idx := 0; idx < len(queue); idx++ {
		curr := queue[idx]
		result = append(result, curr)

		for _, neighbor := range graph[curr] {
			inDegree[neighbor]--

			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	// check for cycles
	if len(result) != nodes.Len() {
		return nil, errors.New("cycle detected or unresolved dependencies")
	}

	return result, nil
}
