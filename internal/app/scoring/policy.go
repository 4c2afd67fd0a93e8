package scoring

// Scoring is pure: it turns a verdict plus prior ledger state into an award.
// The authoritative first-solve decision is the ledger's atomic claim; the
// functions here just price its outcome.

// Fraction of a challenge's point value awarded to solvers after the first.
const subsequentSolveRatio = 0.8

// Battle awards by passing rank; everyone past third place gets the floor.
var battlePointsByRank = []int{200, 150, 100}

const (
	battleFloorPoints         = 50
	battleParticipationPoints = 10
)

const pointsPerLevel = 500

// PriorState is what the ledger knew before this attempt.
type PriorState struct {
	ChallengeSolved bool // any user has a passing submission
	SolvedByUser    bool // this user already has one
}

type Award struct {
	Points       int
	IsFirstSolve bool
}

// ScoreChallenge prices a persistent-challenge verdict. A repeat pass by the
// same user records but earns nothing; the first pass across all users earns
// full value, every later one a fixed fraction.
func ScoreChallenge(challengePoints int, passed bool, prior PriorState) Award {
	if !passed {
		return Award{}
	}
	if prior.SolvedByUser {
		return Award{}
	}
	if !prior.ChallengeSolved {
		return Award{Points: challengePoints, IsFirstSolve: true}
	}
	return Award{Points: int(float64(challengePoints) * subsequentSolveRatio)}
}

// ScoreBattle prices a battle attempt by arrival order among passing
// submissions. passingRank is 1-based; failed attempts earn the flat
// participation credit.
func ScoreBattle(passingRank int, passed bool) int {
	if !passed {
		return battleParticipationPoints
	}
	if passingRank >= 1 && passingRank <= len(battlePointsByRank) {
		return battlePointsByRank[passingRank-1]
	}
	return battleFloorPoints
}

// Level maps lifetime points to a level band.
func Level(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/pointsPerLevel + 1
}
