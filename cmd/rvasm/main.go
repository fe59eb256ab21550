// Command rvasm assembles a source file and prints the decoded program as
// a disassembly listing: a standalone pretty-printer / validator with no
// execution.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrosen/rv32edu/pkg/asm"
	"github.com/mrosen/rv32edu/pkg/vm"
)

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "assembly source file to process")
	flag.Parse()
	if *filename == "" {
		log.Fatal("usage: rvasm -f <assembly-source-file>")
	}

	src, err := os.ReadFile(*filename)
	if err != nil {
		log.Fatal(err)
	}

	result, err := asm.Assemble(string(src))
	if err != nil {
		log.Fatal(err)
	}

	for pc, in := range result.Text {
		fmt.Printf("0x%05x\t%s\n", pc*4, vm.Disassemble(in))
	}
	if len(result.Data) > 0 {
		fmt.Printf("# %d bytes of .data at 0x%05x\n", len(result.Data), vm.DataBase)
	}
}
