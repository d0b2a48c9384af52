package scoring_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/danielhkuo/scoreboard/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func TestComputeTotalScore(t *testing.T) {
	Convey("Given test cases A(weight=1) and B(weight=3) scored 10 and 20", t, func() {
		inputs := []scoring.Input{
			{Value: f(10), Weight: 1},
			{Value: f(20), Weight: 3},
		}

		Convey("When the suite ranks by sum", func() {
			total, ok := scoring.ComputeTotalScore(scoring.AlgorithmSum, inputs)

			Convey("Then the total is the weighted sum", func() {
				So(ok, ShouldBeTrue)
				So(total, ShouldEqual, 70.0)
			})
		})

		Convey("When the suite ranks by avg", func() {
			total, ok := scoring.ComputeTotalScore(scoring.AlgorithmAvg, inputs)

			Convey("Then the total is the weighted average", func() {
				So(ok, ShouldBeTrue)
				So(total, ShouldEqual, 17.5)
			})
		})

		Convey("When the suite has an unknown algorithm", func() {
			total, ok := scoring.ComputeTotalScore("median", inputs)

			Convey("Then it falls back to avg", func() {
				So(ok, ShouldBeTrue)
				So(total, ShouldEqual, 17.5)
			})
		})
	})

	Convey("Given no scores at all", t, func() {
		Convey("Then neither algorithm produces a total", func() {
			_, ok := scoring.ComputeTotalScore(scoring.AlgorithmSum, nil)
			So(ok, ShouldBeFalse)
			_, ok = scoring.ComputeTotalScore(scoring.AlgorithmAvg, []scoring.Input{})
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given scores whose weights add up to zero", t, func() {
		inputs := []scoring.Input{{Value: f(5), Weight: 0}}

		Convey("Then avg reports no total instead of NaN", func() {
			total, ok := scoring.ComputeTotalScore(scoring.AlgorithmAvg, inputs)
			So(ok, ShouldBeFalse)
			So(math.IsNaN(total), ShouldBeFalse)
		})

		Convey("Then sum still reports the weighted sum", func() {
			total, ok := scoring.ComputeTotalScore(scoring.AlgorithmSum, inputs)
			So(ok, ShouldBeTrue)
			So(total, ShouldEqual, 0.0)
		})
	})

	Convey("Given a null score next to a real one", t, func() {
		inputs := []scoring.Input{
			{Value: nil, Weight: 2},
			{Value: f(9), Weight: 1},
		}

		Convey("Then the null counts as zero but keeps its weight", func() {
			total, ok := scoring.ComputeTotalScore(scoring.AlgorithmAvg, inputs)
			So(ok, ShouldBeTrue)
			So(total, ShouldEqual, 3.0)

			total, ok = scoring.ComputeTotalScore(scoring.AlgorithmSum, inputs)
			So(ok, ShouldBeTrue)
			So(total, ShouldEqual, 9.0)
		})
	})
}

func TestComputeTotalScore_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	Convey("For random score sets with positive weights", t, func() {
		for i := 0; i < 200; i++ {
			n := 1 + rng.Intn(12)
			inputs := make([]scoring.Input, n)
			var weightedSum float64
			var weightSum int
			for j := range inputs {
				v := math.Round(rng.Float64()*10000) / 100
				w := 1 + rng.Intn(5)
				inputs[j] = scoring.Input{Value: f(v), Weight: w}
				weightedSum += v * float64(w)
				weightSum += w
			}

			sum, ok := scoring.ComputeTotalScore(scoring.AlgorithmSum, inputs)
			So(ok, ShouldBeTrue)
			So(sum, ShouldEqual, weightedSum)

			avg, ok := scoring.ComputeTotalScore(scoring.AlgorithmAvg, inputs)
			So(ok, ShouldBeTrue)
			So(avg, ShouldEqual, weightedSum/float64(weightSum))

			again, _ := scoring.ComputeTotalScore(scoring.AlgorithmAvg, inputs)
			So(again, ShouldEqual, avg)
		}
	})
}

func TestRound2(t *testing.T) {
	Convey("Round2 keeps two decimals", t, func() {
		So(scoring.Round2(17.5), ShouldEqual, 17.5)
		So(scoring.Round2(2.0/3.0), ShouldEqual, 0.67)
		So(scoring.Round2(-1.234), ShouldEqual, -1.23)
	})
}

func TestNormalizeAlgorithm(t *testing.T) {
	Convey("Only sum is recognised besides avg", t, func() {
		So(scoring.NormalizeAlgorithm("sum"), ShouldEqual, scoring.AlgorithmSum)
		So(scoring.NormalizeAlgorithm("avg"), ShouldEqual, scoring.AlgorithmAvg)
		So(scoring.NormalizeAlgorithm(""), ShouldEqual, scoring.AlgorithmAvg)
		So(scoring.NormalizeAlgorithm("SUM"), ShouldEqual, scoring.AlgorithmAvg)
	})
}
