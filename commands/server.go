package commands

import (
	"crypto/tls"
	"time"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/server"
	"github.com/spf13/afero"
)

type serverOp int

const (
	serverInstance serverOp = iota
	serverStart
	serverStop
	serverStatus
	serverGetPort
	serverGetIP
)

// Server creates, starts, stops and inspects session listeners.
func Server(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	op := serverInstance
	var listener *server.Listener
	var opts []server.Option
	var port, timeoutMS *int
	var certFile, keyFile string
	var sshConfig *server.SSHConfig
	var badArg string

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "--", "-server":
			l, ok := valueOf(args.NextTupleOrPop()).(*server.Listener)
			if !ok {
				badArg = dc
			}
			listener = l
		case "-start":
			op = serverStart
		case "-stop":
			op = serverStop
		case "-status":
			op = serverStatus
		case "-getport":
			op = serverGetPort
		case "-getip":
			op = serverGetIP
		case "-instance":
			op = serverInstance
		case "-port", "-timeout":
			n, err := args.NextInt()
			if err != nil {
				badArg = dc
			}
			if dc == "-port" {
				port = &n
			} else {
				timeoutMS = &n
			}
		case "-address":
			addr, _ := args.NextMaybeQuotationTuplePopString()
			opts = append(opts, server.WithAddress(addr))
		case "-block":
			block, ok := args.NextBlock()
			if !ok {
				badArg = dc
			}
			opts = append(opts, server.WithBlock(block))
		case "-ssl", "-tls":
			certFile, _ = args.NextMaybeQuotationTuplePopString()
			keyFile, _ = args.NextMaybeQuotationTuplePopString()
		case "-ssh":
			if sshConfig == nil {
				sshConfig = &server.SSHConfig{}
			}
		case "-hostkey":
			if sshConfig == nil {
				sshConfig = &server.SSHConfig{}
			}
			sshConfig.HostKeyFile, _ = args.NextMaybeQuotationTuplePopString()
		case "-password":
			if sshConfig == nil {
				sshConfig = &server.SSHConfig{}
			}
			pw, _ := args.NextMaybeQuotationTuplePopString()
			sshConfig.Passwords = append(sshConfig.Passwords, pw)
		case "-chained":
			opts = append(opts, server.WithScopePolicy(server.Chained))
		case "-share":
			opts = append(opts, server.WithScopePolicy(server.Shared))
		case "-rate":
			n, err := args.NextInt()
			if err != nil {
				badArg = dc
			}
			opts = append(opts, server.WithRateLimit(int64(n)))
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if badArg != "" {
		return args, call.Failf("Bad or missing argument to %s", badArg)
	}

	if listener == nil {
		if certFile != "" {
			tlsConfig, err := loadTLS(call.In.Fs(), certFile, keyFile)
			if err != nil {
				return args, call.Failf("Could not load TLS certificate: %v", err)
			}
			opts = append(opts, server.WithTLS(tlsConfig))
		}
		if sshConfig != nil {
			opts = append(opts, server.WithSSH(sshConfig))
		}
		listener = server.NewListener(call.In, opts...)
	}
	if port != nil {
		listener.SetPort(*port)
	}
	if timeoutMS != nil {
		listener.SetAcceptTimeout(time.Duration(*timeoutMS) * time.Millisecond)
	}

	switch op {
	case serverStart:
		if err := listener.Start(); err != nil {
			return args, call.Failf("%v", err)
		}
		return args, call.PutOrFail(listener)
	case serverStop:
		listener.Stop()
	case serverStatus:
		return args, call.PutOrFail(listener.Status())
	case serverGetPort:
		return args, call.PutOrFail(listener.Port())
	case serverGetIP:
		addr := listener.Addr()
		if addr == nil {
			return args, call.PutOrFail(nil)
		}
		return args, call.PutOrFail(addr.String())
	case serverInstance:
		return args, call.PutOrFail(listener)
	}
	return args, interp.Success
}

func loadTLS(fs afero.Fs, certFile, keyFile string) (*tls.Config, error) {
	certPem, err := afero.ReadFile(fs, certFile)
	if err != nil {
		return nil, err
	}
	keyPem, err := afero.ReadFile(fs, keyFile)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(certPem, keyPem)
	if err != nil {
		return nil, err
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

func init() {
	addCmd(
		"server [-to datasink] [-- @listener] [-port n] [-address host] [-timeout ms] [-block $[ block ]$] [-ssl certfile keyfile | -ssh [-hostkey file] [-password pw]] [-chained | -share] [-rate bytes] [-instance | -start | -stop | -status | -getport | -getip]",
		"Serve interpreter sessions over TCP, TLS or SSH.",
		Server, "server")
}
