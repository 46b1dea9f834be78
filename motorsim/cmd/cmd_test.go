package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/horizon0210/PID-Controller-With-FPGA/analysis"
	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
)

const fastYAML = `
clock:
  freq_hz: 200000
decoder:
  min_pulse_ticks: 2
pwm:
  period_ticks: 100
control:
  gains: {kp: 0.5, ki: 2, kd: 0.0025, n: 120, b: 1, kb: 100, ts: 0.005}
`

var _ = Describe("Commands", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = new(bytes.Buffer)
	})

	It("should print one line per parameter register", func() {
		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{"coeffs", "--limit", "12"})
		Expect(rootCmd.Execute()).To(Succeed())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(13))
		Expect(lines[10]).To(HavePrefix("ysat"))
		Expect(lines[10]).To(HaveSuffix("0x41400000"))
		Expect(lines[12]).To(HavePrefix("target"))
	})

	It("should print the register map", func() {
		printRegisterMap(out)

		Expect(out.String()).To(ContainSubstring("0x30   status     RO"))
		Expect(out.String()).To(ContainSubstring("0x2C   target     RW   f32"))
		Expect(out.String()).To(ContainSubstring("31 forward"))
	})

	It("should report a missing configuration file", func() {
		opts := runOptions{
			configPath: filepath.Join(dir, "missing.yaml"),
			duration:   0.01,
		}

		Expect(runSimulation(opts, out)).NotTo(Succeed())
	})

	It("should run, record, and analyze a step", func() {
		config := filepath.Join(dir, "fast.yaml")
		Expect(os.WriteFile(config, []byte(fastYAML), 0o600)).To(Succeed())

		record := filepath.Join(dir, "run")
		opts := runOptions{
			configPath: config,
			duration:   1.5,
			record:     record,
			target:     80,
			hasTarget:  true,
		}
		Expect(runSimulation(opts, out)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("dropped 0"))
		Expect(out.String()).To(ContainSubstring("(target 80)"))

		out.Reset()
		err := analyzeRecording(context.Background(), record+".sqlite3",
			analysis.DefaultStepOptions(), out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(HavePrefix("target 80,"))
	})

	It("should close the recording when the run fails", func() {
		record := filepath.Join(dir, "failed")
		opts := runOptions{record: record}

		Expect(runSimulation(opts, out)).NotTo(Succeed())

		r, err := datarecording.NewReader(record + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		r.MapTable(datarecording.ExecTable, datarecording.ExecInfo{})
		_, n, err := r.Query(context.Background(), datarecording.ExecTable,
			datarecording.QueryParams{
				Where: "Property = ?",
				Args:  []any{"End Time"},
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})

	It("should write unit utilization into a CSV file", func() {
		config := filepath.Join(dir, "fast.yaml")
		Expect(os.WriteFile(config, []byte(fastYAML), 0o600)).To(Succeed())

		csvFile := filepath.Join(dir, "perf.csv")
		opts := runOptions{
			configPath: config,
			duration:   0.05,
			perfPeriod: 0.01,
			perfCSV:    csvFile,
		}
		Expect(runSimulation(opts, out)).To(Succeed())

		data, err := os.ReadFile(csvFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix("Start,End,Where,What"))
		Expect(string(data)).To(ContainSubstring(",Core.MAC,Utilization,"))
	})

	It("should fail to analyze a file without cycles", func() {
		err := analyzeRecording(context.Background(),
			filepath.Join(dir, "empty.sqlite3"),
			analysis.DefaultStepOptions(), out)
		Expect(err).To(HaveOccurred())
	})
})
