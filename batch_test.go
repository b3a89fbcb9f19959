package rcflp_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"git.solver4all.com/azaryc2s/rcflp"
)

const (
	nominalInstance = "2 2\n5 10\n5 20\n3 3\n3 6\n6 3\n"
	// demand 4 2 with the per-unit costs of the nominal instance
	scenarioInstance = "2 2\n5 10\n5 20\n4 2\n4 4\n8 2\n"
	singleSolution   = "single\n2 2\n19\nOptimal\n1\n0\n0 0 1\n0 1 1\n"
	splitSolution    = "split\n2 2\n36\nOptimal\n2\n0 1\n0 0 1\n1 1 1\n"
)

func writeTo(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	return path
}

var _ = Describe("Evaluator", func() {
	var (
		dir       string
		instances []string
		solutions []string
		output    string
		cache     *rcflp.InstanceCache
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		instances = []string{
			writeTo(dir, "cap-example", nominalInstance),
			writeTo(dir, "cap-example_100_0.box", scenarioInstance),
		}
		solutions = []string{
			writeTo(dir, "single.sol", singleSolution),
			writeTo(dir, "split.sol", splitSolution),
		}
		output = filepath.Join(dir, "evaluation.csv")

		var err error
		cache, err = rcflp.NewInstanceCache(8, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(cache.Close)
	})

	Context("scoring every solution on every instance", func() {
		It("should return one record per pair, instance by instance", func() {
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, output, cache, zap.NewNop())
			records, err := ev.EvaluateFiles(instances, solutions)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))

			Expect(records[0].InstancePath).To(Equal(instances[0]))
			Expect(records[0].SolutionPath).To(Equal(solutions[0]))
			Expect(records[0].Result.ConstCost).To(BeNumerically("~", 10, 1e-9))
			Expect(records[0].Result.VarCost).To(BeNumerically("~", 9, 1e-9))
			Expect(records[0].Result.InfeasTotal).To(BeNumerically("~", -1, 1e-9))
			Expect(records[0].Result.InfeasMax).To(BeNumerically("~", 1, 1e-9))

			Expect(records[1].Result.Total()).To(BeNumerically("~", 36, 1e-9))
			Expect(records[1].Result.Feasible()).To(BeTrue())

			Expect(records[2].InstancePath).To(Equal(instances[1]))
			Expect(records[2].Result.VarCost).To(BeNumerically("~", 8, 1e-9))
			Expect(records[2].Result.InfeasMax).To(BeNumerically("~", 1, 1e-9))

			Expect(records[3].Result.VarCost).To(BeNumerically("~", 6, 1e-9))
			Expect(records[3].Result.InfeasTotal).To(BeZero())
		})

		It("should append the records to the output file", func() {
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, output, cache, nil)
			_, err := ev.EvaluateFiles(instances, solutions[:1])
			Expect(err).NotTo(HaveOccurred())
			_, err = ev.EvaluateFiles(instances[:1], solutions[1:])
			Expect(err).NotTo(HaveOccurred())

			records, err := rcflp.ReadRecords(output)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[2].SolutionPath).To(Equal(solutions[1]))
			Expect(records[2].Result.ConstCost).To(BeNumerically("~", 30, 1e-9))
		})

		It("should read every instance file once", func() {
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, "", cache, nil)
			_, err := ev.EvaluateFiles(instances, solutions)
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.Misses()).To(BeEquivalentTo(2))
			Expect(cache.Hits()).To(BeEquivalentTo(1))
			_, err = os.Stat(output)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Context("with a support set", func() {
		writeSet := func(name string, set *rcflp.UncertaintySet) string {
			path := filepath.Join(dir, name)
			file, err := os.Create(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(rcflp.WriteUncertaintySet(file, set)).To(Succeed())
			Expect(file.Close()).To(Succeed())
			return path
		}

		It("should check every instance against the set read from file", func() {
			box, err := rcflp.NewBoxSet([]float64{3, 3}, 0.1)
			Expect(err).NotTo(HaveOccurred())
			support, err := rcflp.ReadUncertaintySet(writeSet("narrow.set", box), 2)
			Expect(err).NotTo(HaveOccurred())

			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, "", cache, nil)
			ev.Support = support
			records, err := ev.EvaluateFiles(instances, solutions)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))

			nominal, err := cache.Get(instances[0], rcflp.FormatORLibrary)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.InSupport(nominal)).To(BeTrue())
			scenario, err := cache.Get(instances[1], rcflp.FormatORLibrary)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.InSupport(scenario)).To(BeFalse())
		})

		It("should reject a set for another number of customers", func() {
			box, err := rcflp.NewBoxSet([]float64{3, 3, 3}, 0.1)
			Expect(err).NotTo(HaveOccurred())
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, "", cache, nil)
			ev.Support = box
			records, err := ev.EvaluateFiles(instances, solutions)
			Expect(err).To(MatchError(rcflp.ErrFormat))
			Expect(records).To(BeEmpty())
		})
	})

	Context("with broken input", func() {
		It("should reject a solution of another size", func() {
			bad := writeTo(dir, "bad.sol", "bad\n3 2\n0\nOptimal\n0\n\n")
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, output, nil, nil)
			_, err := ev.EvaluateFiles(instances, []string{bad})
			Expect(err).To(MatchError(rcflp.ErrFormat))
		})

		It("should report a missing instance file", func() {
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, output, cache, nil)
			_, err := ev.EvaluateFiles([]string{filepath.Join(dir, "none")}, solutions)
			Expect(err).To(MatchError(rcflp.ErrIO))
		})

		It("should stop at a scenario with other dimensions", func() {
			wide := writeTo(dir, "wide", "1 3\n5 10\n1 1 1\n1 1 1\n")
			ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, "", cache, nil)
			records, err := ev.EvaluateFiles([]string{instances[0], wide}, solutions)
			Expect(err).To(MatchError(rcflp.ErrFormat))
			Expect(records).To(HaveLen(2))
		})
	})
})

var _ = Describe("Generator and evaluator", func() {
	It("should score a solution on generated scenarios", func() {
		dir := GinkgoT().TempDir()
		base := writeTo(dir, "cap-example", nominalInstance)
		sol := writeTo(dir, "single.sol", singleSolution)

		inst, err := rcflp.ReadInstance(base, rcflp.FormatORLibrary)
		Expect(err).NotTo(HaveOccurred())
		gen := rcflp.NewGenerator(filepath.Join(dir, "scenarios"), rcflp.FormatORLibrary, nil)
		paths, err := gen.Generate(inst, base, 0.5, 0, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(HaveLen(5))

		ev := rcflp.NewEvaluator(rcflp.FormatORLibrary, filepath.Join(dir, "evaluation.csv"), nil, nil)
		records, err := ev.EvaluateFiles(paths, []string{sol})
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(5))

		for k, rec := range records {
			sc, err := rcflp.SampleScenario(inst, 0.5, k)
			Expect(err).NotTo(HaveOccurred())
			// facility 0 serves everything at per-unit costs 1 and 2
			Expect(rec.Result.ConstCost).To(BeNumerically("~", 10, 1e-9))
			Expect(rec.Result.VarCost).To(BeNumerically("~", sc.Demand[0]+2*sc.Demand[1], 1e-9))
			Expect(rec.Result.InfeasMax).To(BeNumerically("~", max(0, sc.TotalDemand()-5), 1e-9))
		}

		profiles := rcflp.Profiles(records)
		Expect(profiles).To(HaveLen(1))
		Expect(profiles[0].Scenarios).To(Equal(5))
	})
})
