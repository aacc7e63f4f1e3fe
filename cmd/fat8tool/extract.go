package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/retrocompute/fat8d88/analysislog"
	"github.com/retrocompute/fat8d88/charset"
	"github.com/retrocompute/fat8d88/d88"
	"github.com/retrocompute/fat8d88/fat8"
	"github.com/retrocompute/fat8d88/hostname"
)

// extractAction is the tool's default command: for every D88 file on
// the command line, walk every disk it contains, print its analysis
// log, and write its reconstructed contents to a sibling directory.
func extractAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: fat8tool FILE.d88 [FILE.d88 ...]", 1)
	}

	var result *multierror.Error
	for _, path := range c.Args().Slice() {
		if err := extractFile(path); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
		}
	}
	return result.ErrorOrNil()
}

func extractFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	diskIdx := 1
	remaining := raw
	failures := 0
	for len(remaining) > 0 {
		disk, err := d88.Parse(remaining)
		if err != nil {
			return fmt.Errorf("disk #%d: %w", diskIdx, err)
		}
		if diskIdx > 1 || len(remaining) != disk.Size {
			disk.Suffix = fmt.Sprintf(" #Disk%02d", diskIdx)
		}
		if err := extractDisk(path, disk); err != nil {
			fmt.Fprintf(os.Stderr, "%s%s: %s\n", path, disk.Suffix, err.Error())
			failures++
		}

		if disk.Size <= 0 || disk.Size > len(remaining) {
			break
		}
		remaining = remaining[disk.Size:]
		diskIdx++
	}
	if failures > 0 {
		return fmt.Errorf("%d disk(s) could not be extracted", failures)
	}
	return nil
}

func extractDisk(path string, disk *d88.Disk) error {
	report := analysislog.New(os.Stdout)
	logDiskInformation(report, disk)

	outDir, err := sidecarDir(path, disk.Suffix)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	info, err := fat8.Detect(disk)
	if err != nil {
		report.Appendf("Format detection failed: %s", err.Error())
		return os.WriteFile(filepath.Join(outDir, "_fat8_d88_output.txt"), []byte(report.String()+"\n"), 0o644)
	}
	report.Appendf("Format: %s", info.FormatName)

	indices := fat8.ComputeMetadataIndices(info)
	meta := fat8.ParseMetadataTrack(disk, info, indices)
	fat1 := fat8.CheckFAT(info, indices, meta)
	if fat1 == nil {
		report.Append("First FAT copy is unusable (boot/metadata reservation or cluster values out of range); file reconstruction skipped")
	} else {
		if fat8.FATCopiesMatch(info, fat1, meta.FATSectors) {
			report.Append("FAT copies agree")
		} else {
			report.Append("FAT copies disagree; proceeding with the first copy")
		}
		fat8.AnalyzeChains(fat1, info, meta)
		fat8.ReconstructFileData(disk, info, meta)
	}

	logDirectoryListing(report, meta)
	report.AppendErrors("Faults", fat8.AggregateErrors(meta))

	if err := writeMetadataDumps(outDir, info, meta); err != nil {
		return err
	}
	if err := writeEntryFiles(outDir, info, meta); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "_fat8_d88_output.txt"), []byte(report.String()+"\n"), 0o644)
}

func logDiskInformation(report *analysislog.Report, disk *d88.Disk) {
	report.Section("Disk Information" + disk.Suffix)
	name := "None"
	if disk.NameOrComment != "" {
		name = disk.NameOrComment
	}
	report.Appendf("Disk name/comment: %s", name)
	attrs := "None"
	if disk.WriteProtected {
		attrs = d88.DiskAttrWriteProtected
	}
	report.Appendf("Disk attributes: %s", attrs)
	report.Appendf("Disk size: %d", disk.Size)
}

func logDirectoryListing(report *analysislog.Report, meta *fat8.MetadataTrackInfo) {
	report.Section("Directory Listing")
	for _, entry := range meta.DirectoryEntries {
		status := "OK"
		if len(entry.Errors) != 0 {
			status = strings.Join(sortedKeys(entry.Errors), ", ")
		}
		report.Appendf("%3d  %-12s  %8d bytes  %s", entry.Idx, entry.HostFSName, entry.AllocatedSize, status)
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sidecarDir returns "<basename> [FAT8 Contents]<suffix>", or, when that
// path already exists, the same name with " (N)" appended for the
// smallest N from 2 upward that does not exist yet.
func sidecarDir(path, suffix string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Dir(path)
	name := fmt.Sprintf("%s [FAT8 Contents]%s", base, suffix)
	candidate := filepath.Join(dir, name)
	for n := 2; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)", name, n))
	}
}

func writeMetadataDumps(outDir string, info *fat8.Info, meta *fat8.MetadataTrackInfo) error {
	if info.BootSector != nil {
		if err := writeDumpPair(outDir, "_boot_sector", info.BootSector, info); err != nil {
			return err
		}
	}
	for _, vsec := range sortedVirtualSectorNumsMap(meta.RawMetadataSectors) {
		name := fmt.Sprintf("_dir_sector_%d", vsec)
		if _, isFAT := meta.FATSectors[vsec]; isFAT {
			name = fmt.Sprintf("_fat_sector_%d", vsec)
		}
		if err := writeDumpPair(outDir, name, meta.RawMetadataSectors[vsec], info); err != nil {
			return err
		}
	}
	if meta.AutorunData != nil {
		if err := writeDumpPair(outDir, "_AutoRun", meta.AutorunData, info); err != nil {
			return err
		}
	}
	return nil
}

func writeDumpPair(outDir, stem string, data []byte, info *fat8.Info) error {
	if err := os.WriteFile(filepath.Join(outDir, stem+".dat"), data, 0o644); err != nil {
		return err
	}
	text, err := info.Charset.Decode(data, charset.MinimalControls)
	if err != nil {
		text = string(data)
	}
	return os.WriteFile(filepath.Join(outDir, stem+"_utf8_dump.txt"), []byte(text), 0o644)
}

func sortedVirtualSectorNumsMap(m map[int][]byte) []int {
	out := make([]int, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func writeEntryFiles(outDir string, info *fat8.Info, meta *fat8.MetadataTrackInfo) error {
	for _, entry := range meta.DirectoryEntries {
		if len(entry.Errors) != 0 || entry.FileData == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(outDir, entry.HostFSName), entry.FileData, 0o644); err != nil {
			return err
		}
		if entry.Attrs.Has(hostname.AttrObfuscated) && info.ObfuscationName != "" {
			deobfuscated := make([]byte, len(entry.FileData))
			for i, b := range entry.FileData {
				deobfuscated[i] = info.Obfuscation.Deobfuscate(i, b)
			}
			if err := os.WriteFile(filepath.Join(outDir, entry.HostFSDeobfName), deobfuscated, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}
