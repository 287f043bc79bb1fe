package tagshelf

const Version = "0.1.0"
