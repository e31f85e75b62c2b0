package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/student/armreil/internal/translate"
	"github.com/student/armreil/internal/wire"
)

func main() {
	log := logrus.New()

	var format string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "reillift",
		Short: "reillift — translate decoded ARM instructions into REIL",
	}
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "input/output record format: json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log recovered and unknown translations")

	translateCmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate ARM instruction records from a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.InfoLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}
			return runTranslate(cmd, args, format, log)
		},
	}
	rootCmd.AddCommand(translateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reillift:", err)
		os.Exit(1)
	}
}

func runTranslate(cmd *cobra.Command, args []string, format string, log *logrus.Logger) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	records, err := decodeInstructions(raw, format)
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	translator := translate.NewTranslator(log)
	var out []wire.ReilInstructionDTO
	for i, rec := range records {
		instr, err := rec.ToInstruction()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		seq, err := translator.Translate(instr)
		if err != nil {
			return fmt.Errorf("record %d (%s @ 0x%x): %w", i, instr.Mnemonic, instr.Address, err)
		}
		for _, in := range seq {
			out = append(out, wire.FromInstruction(in))
		}
	}

	return encodeInstructions(cmd.OutOrStdout(), out, format)
}

func decodeInstructions(raw []byte, format string) ([]wire.InstructionDTO, error) {
	var records []wire.InstructionDTO
	switch format {
	case "json":
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unrecognized format %q", format)
	}
	return records, nil
}

func encodeInstructions(w io.Writer, out []wire.ReilInstructionDTO, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unrecognized format %q", format)
	}
}
