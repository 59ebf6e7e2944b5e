package replication

var readOnlyCommands = []string{
	"EXISTS", "TYPE", "KEYS", "SCAN", "RANDOMKEY", "TTL", "PTTL", "EXPIRETIME", "PEXPIRETIME", "DUMP", "OBJECT",
	"GET", "MGET", "SUBSTR", "STRLEN", "GETRANGE", "GETBIT", "BITCOUNT", "BITPOS", "BITFIELD_RO",
	"LLEN", "LRANGE", "LINDEX",
	"SCARD", "SISMEMBER", "SMISMEMBER", "SINTER", "SINTERCARD", "SUNION", "SDIFF", "SMEMBERS", "SSCAN", "SRANDMEMBER",
	"ZRANGE", "ZREVRANGE", "ZRANGEBYSCORE", "ZREVRANGEBYSCORE", "ZCARD", "ZSCORE", "ZCOUNT", "ZRANK", "ZREVRANK",
	"ZSCAN", "ZLEXCOUNT", "ZRANGEBYLEX", "ZREVRANGEBYLEX", "ZINTERCARD",
	"HGET", "HMGET", "HEXISTS", "HLEN", "HKEYS", "HVALS", "HGETALL", "HSCAN", "HSTRLEN",
	"XLEN", "XRANGE", "XREVRANGE", "XREAD",
	"PFCOUNT", "GEOHASH", "GEOPOS", "GEODIST", "GEOSEARCH",
	"EVAL_RO", "EVALSHA_RO", "FCALL_RO",
	"PING", "AUTH", "SELECT", "ECHO", "QUIT", "TIME",
}

// Commands that make no sense against a load-balanced set of nodes.
var disallowedCommands = []string{
	"SHUTDOWN", "INFO", "DBSIZE", "LASTSAVE", "CONFIG", "MONITOR",
	"SLAVEOF", "REPLICAOF", "SAVE", "BGSAVE", "BGREWRITEAOF", "SLOWLOG",
}
