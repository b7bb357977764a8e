package cmd

import (
	"database/sql"
	"log"
	"time"

	"taxtoken/domain"
	"taxtoken/infrastructure/dbhandler"
	"taxtoken/infrastructure/entropy"
	"taxtoken/infrastructure/logger"
	"taxtoken/infrastructure/memstore"
	"taxtoken/infrastructure/ton"
	"taxtoken/interface/exporter"
	"taxtoken/interface/repository"
	"taxtoken/usecase"

	"github.com/tonkeeper/tongo/liteapi"
	tgwallet "github.com/tonkeeper/tongo/wallet"
	"go.uber.org/zap"
)

// ledgerDependencyInject wires what the ledger operations need. Without a
// database uri the in-memory store is used, which lives as long as the
// process does.
func ledgerDependencyInject() {
	var err error

	sugar, err = logger.New(domain.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}

	exporter.Init()

	var ledgerRepository usecase.LedgerRepository
	var memoRepository usecase.MemoRepository

	if domain.HasDatabase() {
		dbPool, err = sql.Open("postgres", domain.GetDbUri())
		if err != nil {
			sugar.Fatal(err)
		}
		dbPool.SetMaxOpenConns(20)
		dbPool.SetMaxIdleConns(5)
		dbPool.SetConnMaxIdleTime(1 * time.Minute)
		dbPool.SetConnMaxLifetime(4 * time.Hour)

		dbHandler = dbhandler.DBHandler{DB: dbPool, Logger: sugar}

		ledgerRepository = repository.NewLedgerRepository(dbHandler)
		legRepository = repository.NewLegRepository(dbHandler)
		memoRepository = repository.NewMemoRepository(dbHandler)
	} else {
		sugar.Warnf("🟡 service_db_uri is not set, ledger is kept in memory and lost on exit")
		store := memstore.New()
		ledgerRepository = store
		legRepository = store
		memoRepository = memstore.NewMemos()
	}

	var entropySource usecase.EntropySource
	switch {
	case domain.IsBeaconEnabled():
		entropySource = entropy.NewMasterchainBeacon(connectTongo(), domain.GetBeaconDelay(), sugar)
	case domain.GetEntropySeed() != "":
		sugar.Warnf("🟡 draws use the deterministic entropy sequence")
		entropySource = entropy.NewSequence(domain.GetEntropySeed())
	default:
		entropySource = entropy.Unavailable{}
	}

	ledgerInteractor = usecase.NewLedgerInteractor(domain.GetLedgerAddress(), ledgerRepository, entropySource, sugar)
	memoInteractor = usecase.NewMemoInteractor(memoRepository)
	drawInteractor = usecase.NewDrawInteractor(ledgerInteractor, memoInteractor, domain.GetDrawInterval(), prizePayout(), sugar)
}

// settlementDependencyInject wires the leg settlement. Without a driver wallet
// legs are only logged.
func settlementDependencyInject() {
	var sender usecase.LegSender

	if domain.GetDriverPrivateKey() == nil {
		sugar.Warnf("🟡 no driver wallet is configured, legs are settled in dry run mode")
		sender = ton.NewLogSender(sugar)
	} else {
		var err error
		driverWallet, err = tgwallet.New(domain.GetDriverPrivateKey(), tgwallet.V4R2, 0, nil, connectTongo())
		if err != nil {
			sugar.Fatalf("Unable to connect to driver wallet - %v", err.Error())
		}

		if prize := domain.GetPrizeWallet(); prize != nil && *prize != driverWallet.GetAddress() {
			sugar.Warnf("🟡 prize_wallet is not the driver wallet, prize legs will be rejected")
		}

		sender, err = ton.NewJettonSender(ton.NewWalletSender(&driverWallet), driverWallet.GetAddress(), domain.GetJettonWallet(), sugar)
		if err != nil {
			sugar.Fatal(err)
		}
	}

	settlementInteractor = usecase.NewSettlementInteractor(legRepository, sender, domain.GetMaxRetry(), sugar)
}

func connectTongo() *liteapi.Client {
	if tongoClient != nil {
		return tongoClient
	}

	var err error
	switch domain.GetNetwork() {
	case domain.MainNetwork:
		tongoClient, err = liteapi.NewClientWithDefaultMainnet()
	case domain.TestNetwork:
		tongoClient, err = liteapi.NewClientWithDefaultTestnet()
	}

	if err != nil {
		sugar.Fatalf("Unable to create tongo client: %v", err)
	}
	return tongoClient
}

func prizePayout() domain.PrizePayout {
	payout := domain.PrizePayout{}
	if domain.GetPrizeWallet() != nil {
		payout.Wallet = *domain.GetPrizeWallet()
		payout.Amount = domain.GetPrizeAmount()
	} else if domain.GetPrizeAmount() > 0 {
		sugar.Warnf("🟡 prize_amount is set without prize_wallet, no prize is paid")
	}
	return payout
}

var sugar *zap.SugaredLogger
var dbPool *sql.DB
var dbHandler dbhandler.DBHandler
var tongoClient *liteapi.Client
var legRepository usecase.LegRepository
var ledgerInteractor *usecase.LedgerInteractor
var memoInteractor *usecase.MemoInteractor
var drawInteractor *usecase.DrawInteractor
var settlementInteractor *usecase.SettlementInteractor
var driverWallet tgwallet.Wallet
