// Command rvm assembles a source file and runs it in one step: the
// assembler emits decoded instructions directly, so there is no textual
// bytecode intermediate to round-trip through a separate file.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/mrosen/rv32edu/pkg/asm"
	"github.com/mrosen/rv32edu/pkg/clock"
	"github.com/mrosen/rv32edu/pkg/render"
	"github.com/mrosen/rv32edu/pkg/report"
	"github.com/mrosen/rv32edu/pkg/vm"
)

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "assembly source file to run")
	debug := flag.Bool("d", false, "enable single-step debugging")
	verbose := flag.Bool("v", false, "trace every instruction")
	protect := flag.Bool("protect", false, "write-protect the TEXT region")
	budget := flag.Uint64("budget", 0, "instruction budget (0 = unbounded)")
	noDisplay := flag.Bool("no-display", false, "suppress the terminal renderer")
	hz := flag.Int("hz", 0, "pacing clock target instructions/sec (0 = unpaced)")
	noClock := flag.Bool("no-clock", false, "disable the pacing clock entirely")
	flag.Parse()
	if *filename == "" {
		log.Fatal("usage: rvm [-d] [-v] [-protect] [-budget N] [-no-display] [-hz N] [-no-clock] -f <assembly-source-file>")
	}

	src, err := os.ReadFile(*filename)
	if err != nil {
		log.Fatal(err)
	}
	result, err := asm.Assemble(string(src))
	if err != nil {
		log.Fatal(err)
	}

	cpu := vm.NewCPU()
	cpu.Memory.ProtectText = *protect
	if err := cpu.LoadProgram(result.Text, result.Data); err != nil {
		log.Fatal(err)
	}

	var term *render.Terminal
	if !*noDisplay || *debug {
		t, err := render.Open()
		if err != nil {
			log.Fatal(err)
		}
		term = t
		defer term.Close()
	}

	var pacer *clock.Pacer
	if !*noClock {
		pacer = clock.NewPacer(*hz)
	}

	var n uint64
	for *budget == 0 || n < *budget {
		if *verbose && !cpu.WFI && cpu.PC%4 == 0 && cpu.PC/4 < uint32(len(cpu.Program)) {
			log.Printf("vm: %s", cpu.String())
			log.Printf("vm: 0x%05x %s", cpu.PC, vm.Disassemble(cpu.Program[cpu.PC/4]))
		}
		if *debug && term != nil {
			if err := term.Pause(); err != nil {
				log.Fatal(err)
			}
		}

		stepErr := cpu.Step()
		n++

		if term != nil && !*noDisplay {
			term.Paint(cpu.Display)
		}
		if pacer != nil {
			pacer.Wait()
		}

		if stepErr != nil {
			if errors.Is(stepErr, vm.ErrHalted) {
				break
			}
			var fault *vm.Fault
			if errors.As(stepErr, &fault) {
				log.Fatal(report.Fault(fault, report.Capture(cpu)))
			}
			log.Fatal(stepErr)
		}
		if cpu.Halted {
			break
		}
	}
}
