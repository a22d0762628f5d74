package constants

const EnvPrefix = "STACK" // prefix of environment variables, e.g. STACK_DB

const DB = "db"                   // path to the SQLite file with stack snapshots
const LogFile = "log_file"        // journal file
const LogLevel = "log_level"      // debug, info, warn or error
const CompPow = "computing_power" // goroutines used by eval

const ConfigFile = "STACK_CONFIG" // explicit config file, read before flags
