package utils

import "errors"

const ToolUserAgent = "redl/1.0"
const TempSuffix = ".part"

var ErrEmptyDownloadList = errors.New("download list is empty")

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
