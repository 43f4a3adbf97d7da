/*
SPDX-License-Identifier: Apache-2.0
*/

package node

import (
	"context"
	"net"
	"os"
	"syscall"

	"github.com/depress-xyz/depress/common/flogging"
	floggingmetrics "github.com/depress-xyz/depress/common/flogging/metrics"
	"github.com/depress-xyz/depress/core/chaincode/depress"
	"github.com/depress-xyz/depress/core/operations"
	"github.com/depress-xyz/depress/core/program"
	"github.com/depress-xyz/depress/internal/config"
	"github.com/depress-xyz/depress/internal/depress/common"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/sigmon"
	"google.golang.org/grpc/grpclog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the chaincode as an external service.",
	Long: `Runs the chaincode gRPC server that peers connect to, together with the
operations endpoint. The server is configured by the Chaincode section of
depress.yaml.`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Parsing of the command line is done so silence cmd usage
		cmd.SilenceUsage = true
		conf, err := common.InitConfig()
		if err != nil {
			return err
		}
		return serve(conf)
	},
}

// chaincodeServer is the blocking part of shim.ChaincodeServer, or of a
// peer connection made with shim.Start.
type chaincodeServer interface {
	Start() error
}

func serve(conf *config.Loaded) error {
	if conf.Chaincode.ID == "" {
		return errors.New("chaincode id is required, set Chaincode.ID or DEPRESS_CHAINCODE_ID")
	}

	grpclog.SetLoggerV2(flogging.NewGRPCLogger(flogging.Global.ZapLogger("grpc")))

	opsSystem := newOperationsSystem(conf)
	cc := newChaincode(opsSystem)
	server := newChaincodeServer(conf, cc)

	if err := opsSystem.RegisterChecker("chaincode", &listenerChecker{address: conf.Chaincode.Address}); err != nil {
		return err
	}

	logger.Infof("Serving program %s as %s on %s", cc.ProgramID, conf.Chaincode.ID, conf.Chaincode.Address)
	return runGroup(opsSystem, chaincodeRunner(server))
}

// newChaincode counts log entries and instructions on the metrics provider
// of the operations system.
func newChaincode(opsSystem *operations.System) *depress.Chaincode {
	flogging.SetObserver(floggingmetrics.NewObserver(opsSystem.Provider))
	return depress.New(depress.NewMetrics(opsSystem.Provider))
}

// runGroup runs the operations system and then the chaincode until either
// exits or the process is signaled.
func runGroup(opsSystem *operations.System, chaincode ifrit.Runner) error {
	members := grouper.Members{
		{Name: "operations", Runner: opsSystem},
		{Name: "chaincode", Runner: chaincode},
	}
	group := grouper.NewOrdered(syscall.SIGTERM, members)
	process := ifrit.Invoke(sigmon.New(group, syscall.SIGTERM, os.Interrupt))
	return <-process.Wait()
}

func newOperationsSystem(conf *config.Loaded) *operations.System {
	ops := conf.Operations
	return operations.NewSystem(operations.Options{
		Logger:        flogging.MustGetLogger("operations.runner"),
		ListenAddress: ops.ListenAddress,
		TLS: operations.TLS{
			Enabled:            ops.TLS.Enabled,
			CertFile:           ops.TLS.CertFile,
			KeyFile:            ops.TLS.KeyFile,
			ClientCertRequired: ops.TLS.ClientCertRequired,
			ClientCACertFiles:  ops.TLS.ClientCACertFiles,
		},
		Metrics: operations.MetricsOptions{
			Provider: conf.Metrics.Provider,
		},
		ProgramID: program.Declared,
	})
}

func newChaincodeServer(conf *config.Loaded, cc shim.Chaincode) *shim.ChaincodeServer {
	return &shim.ChaincodeServer{
		CCID:     conf.Chaincode.ID,
		Address:  conf.Chaincode.Address,
		CC:       cc,
		TLSProps: conf.Chaincode.TLSProperties(),
		KaOpts:   conf.Chaincode.KeepaliveParams(),
	}
}

// chaincodeRunner adapts the blocking Start of the chaincode to an
// ifrit.Runner. The shim offers no way to stop it, so a signal returns
// without waiting.
func chaincodeRunner(server chaincodeServer) ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()
		close(ready)

		select {
		case err := <-errCh:
			return errors.WithMessage(err, "chaincode exited")
		case <-signals:
			return nil
		}
	})
}

// listenerChecker reports the chaincode server unhealthy while nothing
// accepts connections on its address.
type listenerChecker struct {
	address string
}

func (l *listenerChecker) HealthCheck(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", l.address)
	if err != nil {
		return errors.WithMessagef(err, "chaincode server is not accepting connections on %s", l.address)
	}
	return conn.Close()
}
