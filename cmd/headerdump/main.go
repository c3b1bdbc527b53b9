// Command headerdump prints every header block it receives and answers
// with the same response the score server would send.
package main

import (
	"fmt"
	"net"
	"strings"

	"github.com/Brownie44l1/scoreserver/internal/request"
	"github.com/Brownie44l1/scoreserver/internal/response"
)

func main() {
	listener, err := net.Listen("tcp", "127.0.0.1:42069")
	if err != nil {
		fmt.Println("Listen error:", err)
		return
	}
	defer listener.Close()
	fmt.Println("Listening on port 42069...")

	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Println("Accept error:", err)
			continue
		}

		go handleConnection(conn)
	}
}

func handleConnection(conn net.Conn) {
	defer conn.Close()

	block, err := request.ReadHeaderBlock(conn)
	if err != nil {
		fmt.Println("Read error:", err)
	}

	fmt.Printf("Header block (%d lines, complete=%t)\n", len(block), block.Complete())
	for i, line := range block {
		fmt.Printf("%3d %q\n", i, line)
	}

	if line, ok := block.RequestLine(); ok {
		if rl, err := request.ParseRequestLine(line); err == nil {
			fmt.Printf("Method: %s\nTarget: %s\nVersion: %s\n", rl.Method, rl.Target, rl.Version)
		} else {
			fmt.Println("Request line:", err)
		}
	}

	resp, err := response.ForRequest(block)
	if err != nil {
		fmt.Println("Response error:", err)
		return
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Println(string(resp.Bytes()))

	if err := response.NewWriter(conn).Send(resp); err != nil {
		fmt.Println("Write error:", err)
	}
}
