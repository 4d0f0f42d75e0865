/* fixtures_test.go
 * Contains helper functions used to build brackets for the bracket package tests
 * Authors: Zachary Bower
 */

package bracket

import "pickleball-brackets/api/shared"

var (
	smith = shared.Player{ID: 1, FirstName: "John", LastName: "Smith"}
	jones = shared.Player{ID: 2, FirstName: "Ann", LastName: "Jones"}
	brown = shared.Player{ID: 3, FirstName: "Bob", LastName: "Brown", NickNames: []string{"Bobby"}}
	lee   = shared.Player{ID: 4, FirstName: "Kim", LastName: "Lee"}
	davis = shared.Player{ID: 5, FirstName: "Tom", LastName: "Davis"}
	clark = shared.Player{ID: 6, FirstName: "Sue", LastName: "Clark"}
	young = shared.Player{ID: 7, FirstName: "Max", LastName: "Young"}
	hall  = shared.Player{ID: 8, FirstName: "Eve", LastName: "Hall"}

	teamSmith = shared.Team{smith, jones}
	teamBrown = shared.Team{brown, lee}
	teamDavis = shared.Team{davis, clark}
	teamYoung = shared.Team{young, hall}
)

func seed(t shared.Team) *Seed {
	return &Seed{Team: t}
}

func match(id int, winner shared.Team, a, b Node) *Match {
	return &Match{ID: id, Winner: winner, Children: [2]Node{a, b}}
}

// fourTeamBracket returns a decided four team bracket:
//
//	M3 (Davis)
//	├── M1 (Smith): Smith vs Brown
//	└── M2 (Davis): Davis vs Young
func fourTeamBracket() *Match {
	m1 := match(1, teamSmith, seed(teamSmith), seed(teamBrown))
	m1.Scores = []Score{{11, 5}, {11, 7}}
	m2 := match(2, teamDavis, seed(teamDavis), seed(teamYoung))
	m3 := match(3, teamDavis, m1, m2)
	m3.Scores = []Score{{11, 9}}
	return m3
}

// lateBranchBracket returns a bracket where only a late, undecided branch involves Smith:
//
//	M5 (undecided)
//	├── M4 (Davis): Davis vs Young
//	└── M3 (undecided)
//	    ├── M1 (Smith): Smith vs Brown
//	    └── M2 (undecided): seed Young vs seed Davis
func lateBranchBracket() *Match {
	m4 := match(4, teamDavis, seed(teamDavis), seed(teamYoung))
	m1 := match(1, teamSmith, seed(teamSmith), seed(teamBrown))
	m2 := match(2, nil, seed(teamYoung), seed(teamDavis))
	m3 := match(3, nil, m1, m2)
	return match(5, nil, m4, m3)
}

// collectMatchIDs returns the ids of all matches in a forest
func collectMatchIDs(roots []*Match) []int {
	var ids []int
	for _, r := range roots {
		Walk(r, func(n Node) bool {
			if m, ok := n.(*Match); ok {
				ids = append(ids, m.ID)
			}
			return true
		})
	}
	return ids
}
