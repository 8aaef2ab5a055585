package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/producerfilm/backend/internal/importer"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "수상 이력 파일 임포트",
	Long: `CSV(; 구분) 또는 HTML 테이블 형식의 수상 이력을 DB에 저장합니다.
잘못된 행은 건너뛰고 경고로 보고합니다.

Subcommands:
  file  - 로컬 파일 하나 임포트
  dir   - IMPORT_DIR 폴더 처리 (처리 후 IMPORT_PROCESSED_DIR 로 이동)
  url   - 원격 파일 다운로드 후 임포트

Example:
  go run ./cmd/producerfilm import file movielist.csv
  go run ./cmd/producerfilm import dir
  go run ./cmd/producerfilm import url https://example.com/movielist.csv`,
}

var (
	importFileCmd = &cobra.Command{
		Use:   "file [path]",
		Short: "로컬 파일 임포트",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportFile,
	}

	importDirCmd = &cobra.Command{
		Use:   "dir",
		Short: "import 폴더 처리",
		Args:  cobra.NoArgs,
		RunE:  runImportDir,
	}

	importURLCmd = &cobra.Command{
		Use:   "url [url]",
		Short: "원격 파일 임포트",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportURL,
	}
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importFileCmd)
	importCmd.AddCommand(importDirCmd)
	importCmd.AddCommand(importURLCmd)
}

func runImportFile(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.importer.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printImportResults(cmd.OutOrStdout(), result)
	return nil
}

func runImportDir(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.folder.Process(cmd.Context())
	if err != nil {
		return err
	}

	if len(results) == 0 {
		PrintInfo(cmd.OutOrStdout(), fmt.Sprintf("No files matching %s in %s", a.cfg.Import.Pattern, a.cfg.Import.Dir))
		return nil
	}

	printImportResults(cmd.OutOrStdout(), results...)
	return nil
}

func runImportURL(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.importer.ImportURL(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printImportResults(cmd.OutOrStdout(), result)
	return nil
}

func printImportResults(w io.Writer, results ...*importer.Result) {
	widths := []int{40, 6, 9, 8}
	PrintTableHeader(w, []string{"SOURCE", "ROWS", "IMPORTED", "SKIPPED"}, widths)

	var skipped []string
	for _, r := range results {
		PrintTableRow(w, []string{
			r.Source,
			fmt.Sprint(r.Rows),
			fmt.Sprint(r.Imported),
			fmt.Sprint(r.Skipped),
		}, widths)
		for _, msg := range r.Messages() {
			skipped = append(skipped, r.Source+": "+msg)
		}
	}

	if len(skipped) > 0 {
		PrintWarning(w, fmt.Sprintf("%d rows skipped", len(skipped)))
		PrintList(w, skipped)
	}
}
