package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/compiler"
	"github.com/vsariola/chirp/version"
)

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	describe := flag.Bool("i", false, "Print the number of instructions, samples and the length of every channel instead of writing files.")
	help := flag.Bool("h", false, "Show help.")
	outPath := flag.String("o", "", "Directory or filename where to write the flattened songs. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the current working directory.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten by compiler", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		song, err := chirp.ReadSong(bytes.NewReader(inputBytes))
		if err != nil {
			return err
		}
		prog, err := compiler.Song(song)
		if err != nil {
			return fmt.Errorf("compiling song failed: %v", err)
		}
		if *describe {
			indices := make([]int, 0, len(prog))
			for index := range prog {
				indices = append(indices, index)
			}
			sort.Ints(indices)
			fmt.Printf("%v: %v\n", filename, prog.Length())
			for _, index := range indices {
				instrs := prog[index]
				fmt.Printf("  channel %d: %d instructions, %d samples\n", index, len(instrs), compiler.Samples(instrs))
			}
			return nil
		}
		flat, err := yaml.Marshal(prog)
		if err != nil {
			return fmt.Errorf("could not marshal the flattened song: %v", err)
		}
		if err := output(filename, ".flat.yml", flat); err != nil {
			return fmt.Errorf("error outputting yaml file: %v", err)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			var files []string
			for _, pattern := range []string{"*.yml", "*.yaml", "*.json"} {
				matches, err := filepath.Glob(filepath.Join(param, pattern))
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not glob the path %v for %v files: %v\n", param, pattern, err)
					retval = 1
					continue
				}
				files = append(files, matches...)
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Chirp compiler. Input .yml or .json songs, outputs the songs with every loop expanded (.flat.yml).\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
