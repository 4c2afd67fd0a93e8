package scoring

import "testing"

func TestScoreChallenge(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		passed     bool
		prior      PriorState
		wantPoints int
		wantFirst  bool
	}{
		{"failed attempt earns nothing", 100, false, PriorState{}, 0, false},
		{"first solve earns full value", 100, true, PriorState{}, 100, true},
		{"later solver earns the fraction", 100, true, PriorState{ChallengeSolved: true}, 80, false},
		{"fraction truncates", 125, true, PriorState{ChallengeSolved: true}, 100, false},
		{"repeat pass by same user earns nothing", 100, true, PriorState{ChallengeSolved: true, SolvedByUser: true}, 0, false},
		{"failed attempt after prior solve still nothing", 100, false, PriorState{ChallengeSolved: true}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			award := ScoreChallenge(tt.points, tt.passed, tt.prior)
			if award.Points != tt.wantPoints || award.IsFirstSolve != tt.wantFirst {
				t.Fatalf("ScoreChallenge(%d, %v, %+v) = %+v, want points %d first %v",
					tt.points, tt.passed, tt.prior, award, tt.wantPoints, tt.wantFirst)
			}
		})
	}
}

func TestScoreBattle(t *testing.T) {
	tests := []struct {
		name   string
		rank   int
		passed bool
		want   int
	}{
		{"first passer", 1, true, 200},
		{"second passer", 2, true, 150},
		{"third passer", 3, true, 100},
		{"fourth passer gets the floor", 4, true, 50},
		{"tenth passer gets the floor", 10, true, 50},
		{"failed attempt gets participation credit", 0, false, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreBattle(tt.rank, tt.passed); got != tt.want {
				t.Fatalf("ScoreBattle(%d, %v) = %d, want %d", tt.rank, tt.passed, got, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{999, 2},
		{1000, 3},
		{-10, 1},
	}
	for _, tt := range tests {
		if got := Level(tt.points); got != tt.want {
			t.Fatalf("Level(%d) = %d, want %d", tt.points, got, tt.want)
		}
	}
}
