// Package abi is the syscall wire shape shared by the scheduler and
// applets: opcode numbers, parameter records and the reply word encoding.
package abi

// Op is a syscall opcode.
type Op uint32

const (
	OpWaitForCallback     Op = 0
	OpNumPendingCallbacks Op = 1
	OpAbort               Op = 2
	OpExit                Op = 3

	OpDebugPrintln Op = 10
	OpDebugTime    Op = 11
	OpDebugPerf    Op = 12

	OpLEDCount Op = 20
	OpLEDGet   Op = 21
	OpLEDSet   Op = 22

	OpButtonCount      Op = 30
	OpButtonRegister   Op = 31
	OpButtonUnregister Op = 32

	OpTimerAllocate Op = 40
	OpTimerStart    Op = 41
	OpTimerStop     Op = 42
	OpTimerFree     Op = 43

	OpUARTCount       Op = 50
	OpUARTSetBaudrate Op = 51
	OpUARTStart       Op = 52
	OpUARTStop        Op = 53
	OpUARTRead        Op = 54
	OpUARTWrite       Op = 55
	OpUARTRegister    Op = 56
	OpUARTUnregister  Op = 57

	OpUSBSerialRead       Op = 60
	OpUSBSerialWrite      Op = 61
	OpUSBSerialFlush      Op = 62
	OpUSBSerialRegister   Op = 63
	OpUSBSerialUnregister Op = 64

	OpGPIOCount     Op = 70
	OpGPIOConfigure Op = 71
	OpGPIORead      Op = 72
	OpGPIOWrite     Op = 73
	OpGPIOLastWrite Op = 74

	OpRngFillBytes Op = 80

	OpHashSupported  Op = 90
	OpHashInitialize Op = 91
	OpHashUpdate     Op = 92
	OpHashFinalize   Op = 93
	OpHMACInitialize Op = 94
	OpHMACUpdate     Op = 95
	OpHMACFinalize   Op = 96

	OpStoreInsert Op = 100
	OpStoreRemove Op = 101
	OpStoreFind   Op = 102

	OpPlatformSerial  Op = 110
	OpPlatformVersion Op = 111
	OpPlatformReboot  Op = 112
	OpUpdateChunkSize Op = 113
	OpUpdateStart     Op = 114
	OpUpdateErase     Op = 115
	OpUpdateWrite     Op = 116
	OpUpdateFinish    Op = 117

	OpProtocolRead       Op = 120
	OpProtocolWrite      Op = 121
	OpProtocolRegister   Op = 122
	OpProtocolUnregister Op = 123

	OpRadioRegister   Op = 130
	OpRadioUnregister Op = 131
	OpRadioRead       Op = 132

	OpVendorSyscall    Op = 140
	OpVendorRegister   Op = 141
	OpVendorUnregister Op = 142
)

var opNames = map[Op]string{
	OpWaitForCallback:     "scheduling_wait_for_callback",
	OpNumPendingCallbacks: "scheduling_num_pending_callbacks",
	OpAbort:               "scheduling_abort",
	OpExit:                "scheduling_exit",
	OpDebugPrintln:        "debug_println",
	OpDebugTime:           "debug_time",
	OpDebugPerf:           "debug_perf",
	OpLEDCount:            "led_count",
	OpLEDGet:              "led_get",
	OpLEDSet:              "led_set",
	OpButtonCount:         "button_count",
	OpButtonRegister:      "button_register",
	OpButtonUnregister:    "button_unregister",
	OpTimerAllocate:       "timer_allocate",
	OpTimerStart:          "timer_start",
	OpTimerStop:           "timer_stop",
	OpTimerFree:           "timer_free",
	OpUARTCount:           "uart_count",
	OpUARTSetBaudrate:     "uart_set_baudrate",
	OpUARTStart:           "uart_start",
	OpUARTStop:            "uart_stop",
	OpUARTRead:            "uart_read",
	OpUARTWrite:           "uart_write",
	OpUARTRegister:        "uart_register",
	OpUARTUnregister:      "uart_unregister",
	OpUSBSerialRead:       "usb_serial_read",
	OpUSBSerialWrite:      "usb_serial_write",
	OpUSBSerialFlush:      "usb_serial_flush",
	OpUSBSerialRegister:   "usb_serial_register",
	OpUSBSerialUnregister: "usb_serial_unregister",
	OpGPIOCount:           "gpio_count",
	OpGPIOConfigure:       "gpio_configure",
	OpGPIORead:            "gpio_read",
	OpGPIOWrite:           "gpio_write",
	OpGPIOLastWrite:       "gpio_last_write",
	OpRngFillBytes:        "rng_fill_bytes",
	OpHashSupported:       "crypto_hash_supported",
	OpHashInitialize:      "crypto_hash_initialize",
	OpHashUpdate:          "crypto_hash_update",
	OpHashFinalize:        "crypto_hash_finalize",
	OpHMACInitialize:      "crypto_hmac_initialize",
	OpHMACUpdate:          "crypto_hmac_update",
	OpHMACFinalize:        "crypto_hmac_finalize",
	OpStoreInsert:         "store_insert",
	OpStoreRemove:         "store_remove",
	OpStoreFind:           "store_find",
	OpPlatformSerial:      "platform_serial",
	OpPlatformVersion:     "platform_version",
	OpPlatformReboot:      "platform_reboot",
	OpUpdateChunkSize:     "platform_update_chunk_size",
	OpUpdateStart:         "platform_update_start",
	OpUpdateErase:         "platform_update_erase",
	OpUpdateWrite:         "platform_update_write",
	OpUpdateFinish:        "platform_update_finish",
	OpProtocolRead:        "protocol_read",
	OpProtocolWrite:       "protocol_write",
	OpProtocolRegister:    "protocol_register",
	OpProtocolUnregister:  "protocol_unregister",
	OpRadioRegister:       "radio_register",
	OpRadioUnregister:     "radio_unregister",
	OpRadioRead:           "radio_read",
	OpVendorSyscall:       "vendor_syscall",
	OpVendorRegister:      "vendor_register",
	OpVendorUnregister:    "vendor_unregister",
}

// Known reports whether op is part of the syscall surface.
func (op Op) Known() bool {
	_, ok := opNames[op]
	return ok
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}
