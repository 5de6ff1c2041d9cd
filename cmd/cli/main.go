package main

import (
	"fmt"
	"os"
)

const banner = `
╔═══════════════════════════════════════════════════════════╗
║                    🚀 ChatDB                              ║
║          자연어 → SQL / MongoDB 쿼리 변환                  ║
╚═══════════════════════════════════════════════════════════╝
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
