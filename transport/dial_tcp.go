// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"context"
	"net"
	"os"
	"strings"

	"github.com/miekg/dns"

	"github.com/ninepkit/ninep/nerr"
)

// useDNSPkgEnv, when set to a non-empty value, makes DialTCP resolve the
// host through github.com/miekg/dns instead of net.DefaultResolver. This
// is an explicit opt-in: without it DialTCP behaves exactly like
// net.Dial, and setting it never silently changes behavior a caller
// didn't ask for.
const useDNSPkgEnv = "NINEP_USE_DNS_PKG"

// DialTCP connects to addr ("host:port"), applying flags to the resulting
// socket. Resolution normally goes through net.DefaultResolver; set the
// NINEP_USE_DNS_PKG environment variable to route it through
// github.com/miekg/dns instead.
func DialTCP(ctx context.Context, addr string, flags Flag) (*Handle, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainGetAddrInfo, err)
	}

	if os.Getenv(useDNSPkgEnv) != "" {
		ip, err := resolveWithMiekgDNS(ctx, host)
		if err != nil {
			return nil, err
		}
		host = ip
	}

	dialer := net.Dialer{Control: controlFunc(flags)}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainGetAddrInfo, err)
	}
	return NewHandle(conn), nil
}

// resolveWithMiekgDNS resolves host to a single dotted-decimal address
// using a hand-built A-record query, rather than net's resolver.
func resolveWithMiekgDNS(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	conf, err := readResolvConf()
	if err != nil {
		return "", nerr.Wrap(nerr.DomainGetAddrInfo, err)
	}
	if len(conf.Servers) == 0 {
		return "", nerr.Newf(nerr.DomainGetAddrInfo, "no nameservers configured")
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)
	m.RecursionDesired = true

	c := new(dns.Client)
	server := net.JoinHostPort(conf.Servers[0], conf.Port)

	resp, _, err := c.ExchangeContext(ctx, m, server)
	if err != nil {
		return "", nerr.Wrap(nerr.DomainGetAddrInfo, err)
	}
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", nerr.Newf(nerr.DomainGetAddrInfo, "no A record found for %q", host)
}

// Dial is a convenience wrapper equivalent to DialTCP with no flags,
// matching the common case of a client that does not care about
// non-blocking mode or descriptor inheritance.
func Dial(ctx context.Context, addr string) (*Handle, error) {
	return DialTCP(ctx, addr, 0)
}

type resolvConf struct {
	Servers []string
	Port    string
}

// readResolvConf reads /etc/resolv.conf for nameserver lines, mirroring
// just enough of the format dns.ClientConfigFromFile expects without
// depending on a particular OS's full resolver stack.
func readResolvConf() (resolvConf, error) {
	conf := resolvConf{Port: "53"}
	data, err := os.ReadFile("/etc/resolv.conf")
	if err != nil {
		return conf, nerr.Wrap(nerr.DomainErrno, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			conf.Servers = append(conf.Servers, fields[1])
		}
	}
	return conf, nil
}
