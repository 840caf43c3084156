package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

const textbookTrace = `L.D F6, 34(R2)
L.D F2, 45(R3)
MUL.D F0, F2, F4
SUB.D F8, F6, F2
DIV.D F10, F0, F6
ADD.D F6, F8, F2
`

var _ = Describe("tomasulo command", func() {
	var (
		dir            string
		stdout, stderr *bytes.Buffer
	)

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	execute := func(args ...string) error {
		cmd := newRootCmd(stdout, stderr)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	It("should write one snapshot per cycle and print the final table", func() {
		trace := writeFile("trace.txt", textbookTrace)
		output := filepath.Join(dir, "output.txt")

		Expect(execute("--output", output, trace)).To(Succeed())

		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(data), "Clock Cycle:")).To(Equal(57))
		Expect(string(data)).To(HavePrefix("Clock Cycle: 1\n"))

		Expect(stdout.String()).To(ContainSubstring(
			"| ADD.D  F6,  F8,  F2   6     10    11    |"))
		Expect(stderr.String()).To(BeEmpty())
	})

	It("should truncate an existing output file", func() {
		trace := writeFile("trace.txt", "ADD.D F2, F4, F6\n")
		output := writeFile("output.txt", strings.Repeat("stale\n", 1000))

		Expect(execute("-o", output, trace)).To(Succeed())

		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).NotTo(ContainSubstring("stale"))
		Expect(strings.Count(string(data), "Clock Cycle:")).To(Equal(4))
	})

	It("should leave the output file untouched for an empty trace", func() {
		trace := writeFile("trace.txt", "# nothing to run\n\n")
		output := writeFile("output.txt", "previous run\n")

		Expect(execute("--output", output, trace)).To(Succeed())

		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("previous run\n"))
	})

	It("should not create an output file for an empty trace", func() {
		trace := writeFile("trace.txt", "")
		output := filepath.Join(dir, "output.txt")

		Expect(execute("--output", output, trace)).To(Succeed())

		_, err := os.Stat(output)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("should require exactly one trace", func() {
		Expect(execute()).To(HaveOccurred())
		Expect(execute("a.txt", "b.txt")).To(HaveOccurred())
	})

	It("should report a missing trace", func() {
		err := execute("--output", filepath.Join(dir, "out.txt"),
			filepath.Join(dir, "missing.txt"))
		Expect(err).To(MatchError(ContainSubstring("error loading trace")))
	})

	It("should report an unknown operation", func() {
		trace := writeFile("trace.txt", "ADD.D F2, F4, F6\nFOO F2, F4, F6\n")

		err := execute("--output", filepath.Join(dir, "out.txt"), trace)

		Expect(errors.Is(err, insts.ErrUnknownOp)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	It("should reject an address outside memory", func() {
		trace := writeFile("trace.txt", "L.D F2, 48(R1)\n")

		err := execute("--output", filepath.Join(dir, "out.txt"), trace)

		Expect(errors.Is(err, tomasulo.ErrAddressRange)).To(BeTrue())
	})

	It("should honor the base register flags", func() {
		trace := writeFile("trace.txt", "L.D F2, 48(R1)\n")

		Expect(execute("--output", filepath.Join(dir, "out.txt"),
			"--base-value", "0", trace)).To(Succeed())
	})

	It("should reject a base register the machine does not have", func() {
		trace := writeFile("trace.txt", "ADD.D F2, F4, F6\n")

		err := execute("--output", filepath.Join(dir, "out.txt"),
			"--base-reg", "40", trace)

		Expect(errors.Is(err, tomasulo.ErrRegisterRange)).To(BeTrue())
	})

	It("should apply a timing configuration", func() {
		config := latency.DefaultTimingConfig()
		config.AddLatency = 5
		configPath := filepath.Join(dir, "timing.json")
		Expect(config.SaveConfig(configPath)).To(Succeed())

		trace := writeFile("trace.txt", "ADD.D F2, F4, F6\n")
		output := filepath.Join(dir, "out.txt")

		Expect(execute("--output", output, "--config", configPath, trace)).To(Succeed())

		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(data), "Clock Cycle:")).To(Equal(7))
	})

	It("should print statistics in verbose mode", func() {
		trace := writeFile("trace.txt", textbookTrace)

		Expect(execute("-v", "--output", filepath.Join(dir, "out.txt"), trace)).To(Succeed())

		Expect(stderr.String()).To(ContainSubstring("Instructions: 6"))
		Expect(stderr.String()).To(ContainSubstring("Total Cycles: 57"))
		Expect(stderr.String()).To(ContainSubstring("CPI: 9.50"))
	})
})
