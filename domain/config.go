package domain

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tonkeeper/tongo/wallet"
)

const (
	MainNetwork = "mainnet"
	TestNetwork = "testnet"
)

var (
	ErrorInvalidNetwork = fmt.Errorf("network must be equal to 'mainnet' or 'testnet' only")

	ErrorMnemonicConflict    = fmt.Errorf("only one of mnemonic or mnemonic_url must be defined")
	ErrorReadingMnemonicFile = fmt.Errorf("error in reading mnemonic file")

	ErrorInvalidLedgerAddress    = fmt.Errorf("ledger_address must be defined")
	ErrorInvalidAuthorityAddress = fmt.Errorf("invalid authority address")
	ErrorInvalidTaxWallet        = fmt.Errorf("invalid tax wallet address")
	ErrorInvalidDevWallet        = fmt.Errorf("invalid dev wallet address")
	ErrorInvalidPrizeWallet      = fmt.Errorf("invalid prize wallet address")
	ErrorInvalidJettonWallet     = fmt.Errorf("invalid jetton wallet address")
	ErrorInvalidTaxPercentage    = fmt.Errorf("tax_percentage must be between 0 and 100")
	ErrorInvalidBeaconDelay      = fmt.Errorf("beacon_delay must be between 1 and 1000 blocks")

	ErrorInvalidDrawInterval   = fmt.Errorf("invalid time interval for draw process")
	ErrorInvalidSettleInterval = fmt.Errorf("invalid time interval for settle process")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

var (
	dbUri   string
	network string

	ledgerAddress string

	authority        *Identity
	taxPercentage    int
	taxWallet        *Identity
	devWallet        *Identity
	prizeWallet      *Identity
	prizeAmount      uint64
	useBeacon        bool
	beaconDelay      uint32
	entropySeed      string
	jettonWallet     *Identity
	driverPrivateKey ed25519.PrivateKey

	drawInterval   time.Duration
	settleInterval time.Duration
	maxRetry       int

	metricsAddress string
	logLevel       string
)

func setDefaults() {
	viper.SetDefault("network", TestNetwork)
	viper.SetDefault("ledger_address", "default")
	viper.SetDefault("tax_percentage", 5)
	viper.SetDefault("draw_interval", "168h")
	viper.SetDefault("settle_interval", "1m")
	viper.SetDefault("max_retry", 5)
	viper.SetDefault("beacon_delay", 4)
	viper.SetDefault("metrics_address", ":9090")
	viper.SetDefault("log_level", "info")
}

// ReadConfig loads the configuration file, if any, and the environment, then
// processes the values once so later accesses are cheap. An empty filePath
// means configuration comes from the environment only.
func ReadConfig(filePath string) error {
	viper.Reset()
	setDefaults()

	if filePath != "" {
		viper.SetConfigFile(filePath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()

	return initializeVariables()
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	// Database stuff
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")

	// Network stuff
	network = strings.TrimSpace(strings.ToLower(viper.GetString("network")))
	if network != MainNetwork && network != TestNetwork {
		return ErrorInvalidNetwork
	}

	// Ledger stuff
	ledgerAddress = strings.TrimSpace(viper.GetString("ledger_address"))
	if ledgerAddress == "" {
		return ErrorInvalidLedgerAddress
	}

	taxPercentage = viper.GetInt("tax_percentage")
	if taxPercentage < 0 || taxPercentage > MaxTaxPercentage {
		return ErrorInvalidTaxPercentage
	}

	if authority, err = optionalIdentity("authority_address", ErrorInvalidAuthorityAddress); err != nil {
		return err
	}
	if taxWallet, err = optionalIdentity("tax_wallet", ErrorInvalidTaxWallet); err != nil {
		return err
	}
	if devWallet, err = optionalIdentity("dev_wallet", ErrorInvalidDevWallet); err != nil {
		return err
	}
	if prizeWallet, err = optionalIdentity("prize_wallet", ErrorInvalidPrizeWallet); err != nil {
		return err
	}
	prizeAmount = viper.GetUint64("prize_amount")

	// Entropy stuff
	useBeacon = viper.GetBool("use_beacon")
	delay := viper.GetInt("beacon_delay")
	if delay < 1 || delay > 1000 {
		return ErrorInvalidBeaconDelay
	}
	beaconDelay = uint32(delay)
	entropySeed = strings.TrimSpace(viper.GetString("entropy_seed"))

	// Driver wallet stuff
	if jettonWallet, err = optionalIdentity("jetton_wallet", ErrorInvalidJettonWallet); err != nil {
		return err
	}

	mnemonic := strings.TrimSpace(viper.GetString("mnemonic"))
	mnemonicUrl := strings.TrimSpace(viper.GetString("mnemonic_url"))
	if mnemonic != "" && mnemonicUrl != "" {
		return ErrorMnemonicConflict
	}

	seed := mnemonic
	if mnemonicUrl != "" {
		seed, err = readMnemonicFile(mnemonicUrl)
		if err != nil {
			return ErrorReadingMnemonicFile
		}
	}

	driverPrivateKey = nil
	if seed != "" {
		driverPrivateKey, err = wallet.SeedToPrivateKey(seed)
		if err != nil {
			return fmt.Errorf("failed to get private key: %w", err)
		}
	}

	//---------------------------------------------------------------
	// draw interval
	strValue := viper.GetString("draw_interval")
	drawInterval, err = time.ParseDuration(strValue)
	if err != nil || drawInterval <= 0 {
		return ErrorInvalidDrawInterval
	}

	//---------------------------------------------------------------
	// settle interval
	strValue = viper.GetString("settle_interval")
	settleInterval, err = time.ParseDuration(strValue)
	if err != nil || settleInterval <= 0 {
		return ErrorInvalidSettleInterval
	}

	maxRetry = viper.GetInt("max_retry")
	metricsAddress = strings.TrimSpace(viper.GetString("metrics_address"))
	logLevel = strings.TrimSpace(strings.ToLower(viper.GetString("log_level")))

	return nil
}

func optionalIdentity(key string, invalid error) (*Identity, error) {
	value := strings.TrimSpace(viper.GetString(key))
	if value == "" {
		return nil, nil
	}

	id, err := ParseIdentity(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", invalid, err)
	}
	return &id, nil
}

func readMnemonicFile(filePath string) (string, error) {
	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(fileContent)), nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetNetwork() string {
	return network
}

func GetLedgerAddress() string {
	return ledgerAddress
}

func GetAuthority() *Identity {
	return authority
}

func GetTaxPercentage() int {
	return taxPercentage
}

func GetTaxWallet() *Identity {
	return taxWallet
}

func GetDevWallet() *Identity {
	return devWallet
}

func GetPrizeWallet() *Identity {
	return prizeWallet
}

func GetPrizeAmount() uint64 {
	return prizeAmount
}

func IsBeaconEnabled() bool {
	return useBeacon
}

func GetBeaconDelay() uint32 {
	return beaconDelay
}

func GetEntropySeed() string {
	return entropySeed
}

func GetJettonWallet() *Identity {
	return jettonWallet
}

func GetDriverPrivateKey() ed25519.PrivateKey {
	return driverPrivateKey
}

func GetDrawInterval() time.Duration {
	return drawInterval
}

func GetSettleInterval() time.Duration {
	return settleInterval
}

func GetMaxRetry() int {
	return maxRetry
}

func GetMetricsAddress() string {
	return metricsAddress
}

func GetLogLevel() string {
	return logLevel
}

// -------------------------------------------------------------------
// Evaluating values

func IsTestNet() bool {
	return network == TestNetwork
}

func HasDatabase() bool {
	return dbUri != ""
}
