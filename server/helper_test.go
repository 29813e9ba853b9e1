/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package server_test

import (
	"fmt"
	"net"
	"time"

	. "github.com/onsi/gomega"

	"github.com/sabouaram/logship/channel"
	"github.com/sabouaram/logship/message"
	"github.com/sabouaram/logship/protocol"
)

func newTestMessage() message.Message {
	return message.NewBuilder().SetText("round trip").Build()
}

func getFreePort() int {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer func() { _ = ln.Close() }()
	return ln.Addr().(*net.TCPAddr).Port
}

func getTestAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", getFreePort())
}

func noopHandler(*channel.Channel, protocol.Item) {}

func connectClient(address string) net.Conn {
	var (
		conn net.Conn
		err  error
	)
	Eventually(func() error {
		conn, err = net.Dial("tcp", address)
		return err
	}, 2*time.Second, 10*time.Millisecond).Should(Succeed())
	return conn
}

func waitForServerRunning(s interface{ IsRunning() bool }, timeout time.Duration) {
	Eventually(s.IsRunning, timeout, 10*time.Millisecond).Should(BeTrue())
}

func waitForConnections(s interface{ OpenConnections() int64 }, n int64, timeout time.Duration) {
	Eventually(s.OpenConnections, timeout, 10*time.Millisecond).Should(Equal(n))
}
